// Package registry implements a client for the ORCID public API: searching
// researcher iDs by email domain and expanding each hit into affiliation
// records that merge into a session's canonical table.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jmcallister/orcview/internal/affiliations"
)

// searchPageSize is the ORCID API's maximum rows per expanded-search request.
const searchPageSize = 200

// Client talks to the ORCID public API with request rate limiting and bounded
// fetch concurrency.
type Client struct {
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewClient creates a Client from the registry configuration.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		http:        &http.Client{Timeout: cfg.TimeoutDuration()},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		concurrency: cfg.MaxConcurrency,
		logger:      logger.With("system", "registry"),
	}
}

// Search finds ORCID iDs whose public email matches any of the given domains
// and expands each into affiliation records. Individual record fetch failures
// are logged and skipped; only search-level failures are fatal.
func (c *Client) Search(ctx context.Context, domains []string, maxResults int) ([]affiliations.Record, error) {
	ids, err := c.searchIDs(ctx, buildEmailQuery(domains), maxResults)
	if err != nil {
		return nil, err
	}

	c.logger.Info("registry search complete", "domains", len(domains), "ids", len(ids))
	return c.fetchRecords(ctx, ids)
}

// buildEmailQuery forms the Solr query for public emails at any of the domains.
func buildEmailQuery(domains []string) string {
	terms := make([]string, 0, len(domains))
	for _, domain := range domains {
		if trimmed := strings.TrimSpace(domain); trimmed != "" {
			terms = append(terms, "email:*@"+trimmed)
		}
	}
	return strings.Join(terms, " OR ")
}

func (c *Client) searchIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	var ids []string
	start := 0

	for len(ids) < maxResults {
		rows := searchPageSize
		if remaining := maxResults - len(ids); remaining < rows {
			rows = remaining
		}

		params := url.Values{}
		params.Set("q", query)
		params.Set("start", strconv.Itoa(start))
		params.Set("rows", strconv.Itoa(rows))

		var page expandedSearchResponse
		if err := c.get(ctx, "/expanded-search/?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("expanded search: %w", err)
		}

		if len(page.Results) == 0 {
			break
		}

		for _, result := range page.Results {
			if result.OrcidID != "" {
				ids = append(ids, result.OrcidID)
			}
		}

		// The cursor advances by results consumed, not IDs kept, so entries
		// without an iD cannot stall the paging.
		start += len(page.Results)
		if start >= page.NumFound {
			break
		}
	}

	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// fetchRecords expands iDs into affiliation records with bounded concurrency,
// preserving search-result order in the output.
func (c *Client) fetchRecords(ctx context.Context, ids []string) ([]affiliations.Record, error) {
	perID := make([][]affiliations.Record, len(ids))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)

	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			var rec orcidRecord
			if err := c.get(ctx, "/"+id+"/record", &rec); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("record fetch failed", "orcid", id, "error", err)
				return nil
			}
			perID[i] = recordAffiliations(&rec)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var records []affiliations.Record
	for _, recs := range perID {
		records = append(records, recs...)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}
