package bcra

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Variable is one monetary series or principal variable published by the
// BCRA (Monetarias v3.0).
type Variable struct {
	ID          int     `json:"idVariable"`
	Description string  `json:"descripcion"`
	Category    string  `json:"categoria"`
	Date        APIDate `json:"fecha"`
	Value       float64 `json:"valor"`
}

// DataPoint is one observation of a monetary series.
type DataPoint struct {
	ID    int     `json:"idVariable"`
	Date  APIDate `json:"fecha"`
	Value float64 `json:"valor"`
}

// SeriesPage is one page of series observations with its pagination
// metadata.
type SeriesPage struct {
	Metadata struct {
		ResultSet ResultSet `json:"resultset"`
	} `json:"metadata"`
	Results []DataPoint `json:"results"`
}

// SeriesOptions narrows a VariableData query. Zero values are omitted
// from the request, letting the API defaults apply.
type SeriesOptions struct {
	// From and To bound the date range (inclusive).
	From time.Time
	To   time.Time

	// Limit caps the page size. The API accepts 10-3000 and defaults
	// to 1000.
	Limit int

	// Offset skips results for pagination.
	Offset int
}

func (o SeriesOptions) validate() error {
	if !o.From.IsZero() && !o.To.IsZero() && o.From.After(o.To) {
		return fmt.Errorf("from date must be earlier than or equal to to date")
	}
	if o.Limit != 0 && (o.Limit < 10 || o.Limit > 3000) {
		return fmt.Errorf("limit must be between 10 and 3000, got %d", o.Limit)
	}
	if o.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", o.Offset)
	}
	return nil
}

func (o SeriesOptions) query() url.Values {
	q := url.Values{}
	if !o.From.IsZero() {
		q.Set("desde", o.From.Format(apiDateLayout))
	}
	if !o.To.IsZero() {
		q.Set("hasta", o.To.Format(apiDateLayout))
	}
	if o.Limit != 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset != 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// Variables fetches all monetary series and principal variables.
func (c *Client) Variables(ctx context.Context) ([]Variable, error) {
	var resp struct {
		Results []Variable `json:"results"`
	}
	if err := c.getJSON(ctx, "monetarias", "estadisticas/v3.0/monetarias", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching variables: %w", err)
	}
	return resp.Results, nil
}

// VariableData fetches observations for one series, optionally narrowed
// by opts.
func (c *Client) VariableData(ctx context.Context, id int, opts SeriesOptions) (*SeriesPage, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var page SeriesPage
	path := fmt.Sprintf("estadisticas/v3.0/monetarias/%d", id)
	if err := c.getJSON(ctx, "monetarias_datos", path, opts.query(), &page); err != nil {
		return nil, fmt.Errorf("fetching data for variable %d: %w", id, err)
	}
	return &page, nil
}

// LatestValue fetches the most recent observation of one series.
func (c *Client) LatestValue(ctx context.Context, id int) (*DataPoint, error) {
	page, err := c.VariableData(ctx, id, SeriesOptions{Limit: 10})
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, fmt.Errorf("no data available for variable %d", id)
	}

	latest := page.Results[0]
	for _, p := range page.Results[1:] {
		if p.Date.After(latest.Date.Time) {
			latest = p
		}
	}
	return &latest, nil
}

// VariableByName finds a variable whose description contains name
// (case-insensitive). Returns nil when nothing matches.
func (c *Client) VariableByName(ctx context.Context, name string) (*Variable, error) {
	variables, err := c.Variables(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	for _, v := range variables {
		if strings.Contains(strings.ToLower(v.Description), needle) {
			return &v, nil
		}
	}
	return nil, nil
}
