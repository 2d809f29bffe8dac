package bcra

import (
	"context"
	"fmt"
)

// Entity is a financial entity that can report checks.
type Entity struct {
	Code int    `json:"codigoEntidad"`
	Name string `json:"denominacion"`
}

// CheckDetail describes one report against a check.
type CheckDetail struct {
	Branch  int    `json:"sucursal"`
	Account int    `json:"numeroCuenta"`
	Cause   string `json:"causal"`
}

// ReportedCheck is the reported-check record for one check number.
type ReportedCheck struct {
	Number      int           `json:"numeroCheque"`
	Reported    bool          `json:"denunciado"`
	ProcessedAt APIDate       `json:"fechaProcesamiento"`
	EntityName  string        `json:"denominacionEntidad"`
	Details     []CheckDetail `json:"detalles"`
}

// Entities fetches the financial entities covered by the Cheques API.
func (c *Client) Entities(ctx context.Context) ([]Entity, error) {
	var resp struct {
		Results []Entity `json:"results"`
	}
	if err := c.getJSON(ctx, "cheques_entidades", "cheques/v1.0/entidades", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching entities: %w", err)
	}
	return resp.Results, nil
}

// Check fetches the reported-check record for checkNumber at the entity
// identified by entityCode.
func (c *Client) Check(ctx context.Context, entityCode, checkNumber int) (*ReportedCheck, error) {
	if entityCode <= 0 {
		return nil, fmt.Errorf("entity code must be positive, got %d", entityCode)
	}
	if checkNumber <= 0 {
		return nil, fmt.Errorf("check number must be positive, got %d", checkNumber)
	}

	var resp struct {
		Results ReportedCheck `json:"results"`
	}
	path := fmt.Sprintf("cheques/v1.0/denunciados/%d/%d", entityCode, checkNumber)
	if err := c.getJSON(ctx, "cheques_denunciados", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching check %d at entity %d: %w", checkNumber, entityCode, err)
	}
	return &resp.Results, nil
}
