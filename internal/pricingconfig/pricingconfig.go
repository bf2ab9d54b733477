package pricingconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/dealcost/internal/pricing"
)

//go:embed default.yaml
var defaultYAML []byte

// Document is a pricing-config file: the sliding scales and the finance
// factor sheet.
type Document struct {
	Version string               `yaml:"version,omitempty" json:"version,omitempty"`
	Scales  pricing.ScaleConfig  `yaml:"scales" json:"scales"`
	Factors pricing.FactorConfig `yaml:"factors" json:"factors"`
}

// Default returns the pricing config shipped with the binary.
func Default() (Document, error) {
	doc, err := Parse(defaultYAML)
	if err != nil {
		return Document{}, fmt.Errorf("parse default pricing config: %w", err)
	}
	return doc, nil
}

// Parse decodes a YAML pricing-config document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ReadFile loads a pricing-config file. A missing file yields an empty
// document so that overrides stay optional.
func ReadFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, nil
		}
		return Document{}, err
	}
	doc, err := Parse(b)
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Load reads the default config and merges the file at overridePath over it.
// An empty overridePath returns the defaults.
func Load(overridePath string) (Document, error) {
	doc, err := Default()
	if err != nil {
		return Document{}, err
	}
	if overridePath == "" {
		return doc, nil
	}
	override, err := ReadFile(overridePath)
	if err != nil {
		return Document{}, err
	}
	return Merge(doc, override), nil
}

// Merge overlays b onto a. A band table in b replaces the whole table in a;
// factor tables are replaced per term and escalation.
func Merge(a, b Document) Document {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if len(b.Scales.Installation) > 0 {
		out.Scales.Installation = b.Scales.Installation
	}
	if len(b.Scales.GrossProfit) > 0 {
		out.Scales.GrossProfit = b.Scales.GrossProfit
	}
	if len(b.Scales.FinanceFee) > 0 {
		out.Scales.FinanceFee = b.Scales.FinanceFee
	}
	if b.Scales.AdditionalCosts != (pricing.AdditionalCosts{}) {
		out.Scales.AdditionalCosts = b.Scales.AdditionalCosts
	}

	if len(b.Factors) > 0 {
		merged := make(pricing.FactorConfig, len(a.Factors))
		for term, byEscalation := range a.Factors {
			merged[term] = make(map[int]map[string]float64, len(byEscalation))
			for escalation, bands := range byEscalation {
				merged[term][escalation] = bands
			}
		}
		for term, byEscalation := range b.Factors {
			if merged[term] == nil {
				merged[term] = make(map[int]map[string]float64, len(byEscalation))
			}
			for escalation, bands := range byEscalation {
				merged[term][escalation] = bands
			}
		}
		out.Factors = merged
	}

	return out
}

// Compile parses the band tables of doc for the engine.
func Compile(doc Document) (pricing.Scales, pricing.FactorSheet, error) {
	scales, err := pricing.CompileScales(doc.Scales)
	if err != nil {
		return pricing.Scales{}, pricing.FactorSheet{}, fmt.Errorf("compile scales: %w", err)
	}
	factors, err := pricing.CompileFactorSheet(doc.Factors)
	if err != nil {
		return pricing.Scales{}, pricing.FactorSheet{}, fmt.Errorf("compile factor sheet: %w", err)
	}
	return scales, factors, nil
}
