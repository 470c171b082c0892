// Package tabular decodes uploaded spreadsheets (CSV or XLSX) into a uniform
// header-plus-rows representation, tolerating the encoding and shape defects
// common in real-world exports.
package tabular

import "bytes"

// Sheet is a decoded spreadsheet: a header row, data rows as strings, and any
// non-fatal defects encountered while decoding.
type Sheet struct {
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
	Warnings []Warning  `json:"warnings,omitempty"`
}

// Warning describes a non-fatal defect in a decoded row. Row is 1-based and
// counts data rows; the header row is row 0.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Decode sniffs the format of data and decodes it as XLSX (zip container) or CSV.
func Decode(data []byte) (*Sheet, error) {
	if bytes.HasPrefix(data, xlsxMagic) {
		return DecodeXLSX(data)
	}
	return DecodeCSV(data)
}
