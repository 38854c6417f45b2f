// whoopclient/pagination.go
package whoopclient

import (
	"context"
	"net/url"
	"strconv"
)

// MaxPageLimit is the upstream hard cap on records per page.
const MaxPageLimit = 25

// CountAll requests every record until the upstream signals exhaustion. This
// can be arbitrarily expensive for wide date ranges.
const CountAll = -1

// PageParams specifies the query for a single page fetch. Start and End accept
// the loose date shapes handled by NormalizeStartISO/NormalizeEndISO.
type PageParams struct {
	Start     string
	End       string
	Limit     int
	NextToken string
}

// AutoParams specifies an auto-paginating fetch.
type AutoParams struct {
	Start string
	End   string

	// Count is the desired number of records. Zero returns an empty page
	// without touching the upstream; CountAll paginates to exhaustion.
	Count int

	// PerPage is clamped to [1, MaxPageLimit].
	PerPage int

	// NextToken resumes pagination from a caller-supplied cursor.
	NextToken string
}

// Page is one page of trimmed records. An empty NextToken means the resource
// is exhausted.
type Page struct {
	Records   []map[string]interface{}
	NextToken string
}

// FetchPage fetches one page of a cursor-paged resource, normalizing the date
// bounds, the cursor field name and the record fields.
func (c *Client) FetchPage(ctx context.Context, resourceBase string, params PageParams) (*Page, error) {
	u, err := url.Parse(resourceBase)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	if params.Start != "" {
		start, err := NormalizeStartISO(params.Start)
		if err != nil {
			return nil, err
		}
		q.Set("start", start)
	}
	if params.End != "" {
		end, err := NormalizeEndISO(params.End)
		if err != nil {
			return nil, err
		}
		q.Set("end", end)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.NextToken != "" {
		q.Set("nextToken", params.NextToken)
	}
	u.RawQuery = q.Encode()

	body, err := c.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}

	return parsePage(body), nil
}

// FetchAuto walks the cursor-paged resource until the desired record count is
// satisfied or the cursor is exhausted, whichever comes first. It returns at
// most params.Count records plus the last cursor actually observed. Any page
// failure aborts the whole accumulation.
func (c *Client) FetchAuto(ctx context.Context, resourceBase string, params AutoParams) (*Page, error) {
	if params.Count == 0 {
		return &Page{Records: []map[string]interface{}{}}, nil
	}

	perPage := params.PerPage
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPageLimit {
		perPage = MaxPageLimit
	}

	records := []map[string]interface{}{}
	cursor := params.NextToken

	for {
		limit := perPage
		if params.Count != CountAll {
			if remaining := params.Count - len(records); remaining < limit {
				// Requesting only the shortfall makes a satisfiable first page
				// a single request.
				limit = remaining
			}
		}

		page, err := c.FetchPage(ctx, resourceBase, PageParams{
			Start:     params.Start,
			End:       params.End,
			Limit:     limit,
			NextToken: cursor,
		})
		if err != nil {
			return nil, err
		}

		records = append(records, page.Records...)
		cursor = page.NextToken

		if cursor == "" {
			break
		}
		if params.Count != CountAll && len(records) >= params.Count {
			break
		}
	}

	if params.Count != CountAll && len(records) > params.Count {
		records = records[:params.Count]
	}

	return &Page{Records: records, NextToken: cursor}, nil
}

// parsePage normalizes the upstream page envelope: records become trimmed
// maps, and the cursor field name variants collapse into NextToken.
func parsePage(body map[string]interface{}) *Page {
	page := &Page{Records: []map[string]interface{}{}}

	if raw, ok := body["records"].([]interface{}); ok {
		for _, entry := range raw {
			if record, ok := entry.(map[string]interface{}); ok {
				page.Records = append(page.Records, TrimRecord(record))
			}
		}
	}

	// Upstream responses have been observed with both cursor spellings.
	if token, ok := body["next_token"].(string); ok && token != "" {
		page.NextToken = token
	} else if token, ok := body["nextToken"].(string); ok && token != "" {
		page.NextToken = token
	}

	return page
}
