package bcra

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Currency is one currency tracked by the exchange statistics API.
type Currency struct {
	Code string `json:"codigo"`
	Name string `json:"denominacion"`
}

// QuotationDetail is one currency's quotation within a daily board.
type QuotationDetail struct {
	CurrencyCode string  `json:"codigoMoneda"`
	Description  string  `json:"descripcion"`
	PassRate     float64 `json:"tipoPase"`
	Rate         float64 `json:"tipoCotizacion"`
}

// Quotation is the quotation board for one date.
type Quotation struct {
	Date    APIDate           `json:"fecha"`
	Details []QuotationDetail `json:"detalle"`
}

// Currencies fetches the list of tracked currencies.
func (c *Client) Currencies(ctx context.Context) ([]Currency, error) {
	var resp struct {
		Results []Currency `json:"results"`
	}
	if err := c.getJSON(ctx, "divisas", "estadisticascambiarias/v1.0/Maestros/Divisas", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching currencies: %w", err)
	}
	return resp.Results, nil
}

// Rates fetches the quotation board for date; the zero time fetches the
// latest available board.
func (c *Client) Rates(ctx context.Context, date time.Time) (*Quotation, error) {
	var q url.Values
	if !date.IsZero() {
		q = url.Values{"fecha": {date.Format(apiDateLayout)}}
	}

	var resp struct {
		Results Quotation `json:"results"`
	}
	if err := c.getJSON(ctx, "cotizaciones", "estadisticascambiarias/v1.0/Cotizaciones", q, &resp); err != nil {
		return nil, fmt.Errorf("fetching quotations: %w", err)
	}
	return &resp.Results, nil
}

// CurrencyEvolution fetches the quotation history for one currency code,
// optionally bounded by from/to. limit accepts 10-1000 (0 means the API
// default); offset skips results for pagination.
func (c *Client) CurrencyEvolution(ctx context.Context, code string, from, to time.Time, limit, offset int) ([]Quotation, error) {
	if code == "" {
		return nil, fmt.Errorf("currency code is required")
	}
	if limit != 0 && (limit < 10 || limit > 1000) {
		return nil, fmt.Errorf("limit must be between 10 and 1000, got %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative, got %d", offset)
	}

	q := url.Values{}
	if !from.IsZero() {
		q.Set("fechaDesde", from.Format(apiDateLayout))
	}
	if !to.IsZero() {
		q.Set("fechaHasta", to.Format(apiDateLayout))
	}
	if limit != 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset != 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var resp struct {
		Results []Quotation `json:"results"`
	}
	path := "estadisticascambiarias/v1.0/Cotizaciones/" + url.PathEscape(code)
	if err := c.getJSON(ctx, "cotizaciones_evolucion", path, q, &resp); err != nil {
		return nil, fmt.Errorf("fetching evolution for %s: %w", code, err)
	}
	return resp.Results, nil
}
