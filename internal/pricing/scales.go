package pricing

import "fmt"

// ScaleConfig is the admin-managed pricing configuration in its stored,
// string-keyed form.
type ScaleConfig struct {
	Installation    map[string]PricedEntity `json:"installation" yaml:"installation"`
	GrossProfit     map[string]PricedEntity `json:"gross_profit" yaml:"gross_profit"`
	FinanceFee      map[string]PricedEntity `json:"finance_fee" yaml:"finance_fee"`
	AdditionalCosts AdditionalCosts         `json:"additional_costs" yaml:"additional_costs"`
}

// Scales is the compiled form of ScaleConfig used by the engine.
type Scales struct {
	Installation    BandTable
	GrossProfit     BandTable
	FinanceFee      BandTable
	AdditionalCosts AdditionalCosts
}

// CompileScales parses every band table of cfg.
func CompileScales(cfg ScaleConfig) (Scales, error) {
	installation, err := NewBandTable(TableInstallation, cfg.Installation)
	if err != nil {
		return Scales{}, err
	}
	grossProfit, err := NewBandTable(TableGrossProfit, cfg.GrossProfit)
	if err != nil {
		return Scales{}, err
	}
	financeFee, err := NewBandTable(TableFinanceFee, cfg.FinanceFee)
	if err != nil {
		return Scales{}, err
	}
	return Scales{
		Installation:    installation,
		GrossProfit:     grossProfit,
		FinanceFee:      financeFee,
		AdditionalCosts: cfg.AdditionalCosts,
	}, nil
}

// FactorConfig maps term (months) -> escalation (percent) -> amount band -> factor.
type FactorConfig map[int]map[int]map[string]float64

// FactorSheet is the compiled finance factor lookup.
type FactorSheet struct {
	tables map[factorKey]BandTable
}

type factorKey struct {
	term       int
	escalation int
}

// CompileFactorSheet parses the amount bands of every term/escalation pair.
func CompileFactorSheet(cfg FactorConfig) (FactorSheet, error) {
	sheet := FactorSheet{tables: make(map[factorKey]BandTable)}
	for term, byEscalation := range cfg {
		for escalation, byAmount := range byEscalation {
			raw := make(map[string]PricedEntity, len(byAmount))
			for key, factor := range byAmount {
				raw[key] = PricedEntity{Cost: factor, ManagerCost: factor, UserCost: factor}
			}
			table, err := NewBandTable(TableFactor, raw)
			if err != nil {
				return FactorSheet{}, fmt.Errorf("term %d escalation %d: %w", term, escalation, err)
			}
			sheet.tables[factorKey{term: term, escalation: escalation}] = table
		}
	}
	return sheet, nil
}

// Factor looks up the finance factor for amount. A missing term or
// escalation behaves like an empty band table.
func (s FactorSheet) Factor(term, escalation int, amount float64) (float64, error) {
	table, ok := s.tables[factorKey{term: term, escalation: escalation}]
	if !ok {
		return 0, &ConfigurationError{Table: TableFactor}
	}
	b, _, err := table.Locate(amount)
	if err != nil {
		return 0, err
	}
	return b.Cost, nil
}
