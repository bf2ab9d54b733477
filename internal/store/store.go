// Package store persists the admin-managed pricing config: sliding-scale
// bands, additional costs and the finance factor sheet.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/dealcost/internal/pricing"
	"github.com/Simplici0/dealcost/internal/pricingconfig"
)

// Store reads and writes pricing config in SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Empty reports whether no scale bands have been stored yet.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM scale_bands LIMIT 1)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check scale bands existence: %w", err)
	}
	return !exists, nil
}

// Load reads the full pricing config.
func (s *Store) Load(ctx context.Context) (pricingconfig.Document, error) {
	doc := pricingconfig.Document{
		Scales: pricing.ScaleConfig{
			Installation: map[string]pricing.PricedEntity{},
			GrossProfit:  map[string]pricing.PricedEntity{},
			FinanceFee:   map[string]pricing.PricedEntity{},
		},
		Factors: pricing.FactorConfig{},
	}

	if err := s.loadBands(ctx, &doc.Scales); err != nil {
		return pricingconfig.Document{}, err
	}
	if err := s.loadAdditionalCosts(ctx, &doc.Scales.AdditionalCosts); err != nil {
		return pricingconfig.Document{}, err
	}
	if err := s.loadFactors(ctx, doc.Factors); err != nil {
		return pricingconfig.Document{}, err
	}

	err := s.db.QueryRowContext(ctx, `SELECT version FROM pricing_config_meta WHERE id = 1`).Scan(&doc.Version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return pricingconfig.Document{}, fmt.Errorf("query pricing config version: %w", err)
	}

	return doc, nil
}

// Compiled loads the pricing config and compiles it for the engine.
func (s *Store) Compiled(ctx context.Context) (pricing.Scales, pricing.FactorSheet, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return pricing.Scales{}, pricing.FactorSheet{}, err
	}
	return pricingconfig.Compile(doc)
}

func (s *Store) loadBands(ctx context.Context, scales *pricing.ScaleConfig) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scale, band, cost, manager_cost, user_cost
		FROM scale_bands
	`)
	if err != nil {
		return fmt.Errorf("query scale bands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scale, band string
		var e pricing.PricedEntity
		if err := rows.Scan(&scale, &band, &e.Cost, &e.ManagerCost, &e.UserCost); err != nil {
			return fmt.Errorf("scan scale band: %w", err)
		}
		switch scale {
		case pricing.TableInstallation:
			scales.Installation[band] = e
		case pricing.TableGrossProfit:
			scales.GrossProfit[band] = e
		case pricing.TableFinanceFee:
			scales.FinanceFee[band] = e
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate scale bands: %w", err)
	}
	return nil
}

func (s *Store) loadAdditionalCosts(ctx context.Context, c *pricing.AdditionalCosts) error {
	err := s.db.QueryRowContext(ctx, `
		SELECT
			cost_per_kilometer,
			cost_per_point,
			manager_cost_per_kilometer,
			manager_cost_per_point,
			user_cost_per_kilometer,
			user_cost_per_point
		FROM additional_costs
		WHERE id = 1
	`).Scan(
		&c.CostPerKilometer,
		&c.CostPerPoint,
		&c.ManagerCostPerKilometer,
		&c.ManagerCostPerPoint,
		&c.UserCostPerKilometer,
		&c.UserCostPerPoint,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query additional costs: %w", err)
	}
	return nil
}

func (s *Store) loadFactors(ctx context.Context, factors pricing.FactorConfig) error {
	rows, err := s.db.QueryContext(ctx, `SELECT term, escalation, band, factor FROM finance_factors`)
	if err != nil {
		return fmt.Errorf("query finance factors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var term, escalation int
		var band string
		var factor float64
		if err := rows.Scan(&term, &escalation, &band, &factor); err != nil {
			return fmt.Errorf("scan finance factor: %w", err)
		}
		if factors[term] == nil {
			factors[term] = map[int]map[string]float64{}
		}
		if factors[term][escalation] == nil {
			factors[term][escalation] = map[string]float64{}
		}
		factors[term][escalation][band] = factor
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate finance factors: %w", err)
	}
	return nil
}

// Replace swaps the stored pricing config for doc in one transaction.
// It returns the number of rows written.
func (s *Store) Replace(ctx context.Context, doc pricingconfig.Document) (int, error) {
	// Refuse configs the engine could not compile.
	if _, _, err := pricingconfig.Compile(doc); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin pricing config transaction: %w", err)
	}

	n, err := replace(ctx, tx, doc)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit pricing config transaction: %w", err)
	}
	return n, nil
}

func replace(ctx context.Context, tx *sql.Tx, doc pricingconfig.Document) (int, error) {
	for _, stmt := range []string{
		`DELETE FROM scale_bands`,
		`DELETE FROM finance_factors`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("clear pricing config: %w", err)
		}
	}

	written := 0
	tables := []struct {
		name  string
		bands map[string]pricing.PricedEntity
	}{
		{pricing.TableInstallation, doc.Scales.Installation},
		{pricing.TableGrossProfit, doc.Scales.GrossProfit},
		{pricing.TableFinanceFee, doc.Scales.FinanceFee},
	}
	for _, table := range tables {
		for band, e := range table.bands {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO scale_bands (scale, band, cost, manager_cost, user_cost)
				VALUES (?, ?, ?, ?, ?)
			`, table.name, band, e.Cost, e.ManagerCost, e.UserCost); err != nil {
				return 0, fmt.Errorf("insert %s band %q: %w", table.name, band, err)
			}
			written++
		}
	}

	c := doc.Scales.AdditionalCosts
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO additional_costs (
			id,
			cost_per_kilometer,
			cost_per_point,
			manager_cost_per_kilometer,
			manager_cost_per_point,
			user_cost_per_kilometer,
			user_cost_per_point
		) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cost_per_kilometer = excluded.cost_per_kilometer,
			cost_per_point = excluded.cost_per_point,
			manager_cost_per_kilometer = excluded.manager_cost_per_kilometer,
			manager_cost_per_point = excluded.manager_cost_per_point,
			user_cost_per_kilometer = excluded.user_cost_per_kilometer,
			user_cost_per_point = excluded.user_cost_per_point,
			updated_at = CURRENT_TIMESTAMP
	`, c.CostPerKilometer, c.CostPerPoint, c.ManagerCostPerKilometer, c.ManagerCostPerPoint, c.UserCostPerKilometer, c.UserCostPerPoint); err != nil {
		return 0, fmt.Errorf("upsert additional costs: %w", err)
	}
	written++

	for term, byEscalation := range doc.Factors {
		for escalation, bands := range byEscalation {
			for band, factor := range bands {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO finance_factors (term, escalation, band, factor)
					VALUES (?, ?, ?, ?)
				`, term, escalation, band, factor); err != nil {
					return 0, fmt.Errorf("insert finance factor %d/%d/%q: %w", term, escalation, band, err)
				}
				written++
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pricing_config_meta (id, version) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version, updated_at = CURRENT_TIMESTAMP
	`, doc.Version); err != nil {
		return 0, fmt.Errorf("upsert pricing config version: %w", err)
	}

	return written, nil
}
