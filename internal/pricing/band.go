package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Names of the sliding-scale tables a deal is priced against.
const (
	TableInstallation = "installation"
	TableGrossProfit  = "gross_profit"
	TableFinanceFee   = "finance_fee"
	TableFactor       = "factor"
)

var (
	// ErrBandNotFound matches every ConfigurationError.
	ErrBandNotFound   = errors.New("band not found")
	ErrInvalidBandKey = errors.New("invalid band key")
)

// ConfigurationError reports a band table with no entries to resolve against.
type ConfigurationError struct {
	Table string
}

func (e *ConfigurationError) Error() string {
	switch e.Table {
	case TableInstallation:
		return "installation band not found"
	case TableFinanceFee:
		return "finance fee band not found"
	case TableGrossProfit:
		return "gross profit band not found"
	case TableFactor:
		return "finance factor band not found"
	}
	return fmt.Sprintf("%s band not found", e.Table)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrBandNotFound
}

// Band is one inclusive numeric range of a table. Upper is +Inf for the
// open-ended "N+" band.
type Band struct {
	Key   string
	Lower float64
	Upper float64
	PricedEntity
}

// Contains reports whether value falls inside the band, bounds inclusive.
func (b Band) Contains(value float64) bool {
	return value >= b.Lower && value <= b.Upper
}

// BandTable is a sliding scale parsed once from its string-keyed form and
// kept sorted by lower bound.
type BandTable struct {
	name  string
	bands []Band
}

// ParseBandKey turns "0-4" into [0, 4] and "33+" into [33, +Inf].
func ParseBandKey(key string) (lower, upper float64, err error) {
	k := strings.TrimSpace(key)
	if rest, ok := strings.CutSuffix(k, "+"); ok {
		lower, err = strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w %q", ErrInvalidBandKey, key)
		}
		return lower, math.Inf(1), nil
	}

	lo, hi, ok := strings.Cut(k, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidBandKey, key)
	}
	lower, err = strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidBandKey, key)
	}
	upper, err = strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q", ErrInvalidBandKey, key)
	}
	if upper < lower {
		return 0, 0, fmt.Errorf("%w %q: upper bound below lower bound", ErrInvalidBandKey, key)
	}
	return lower, upper, nil
}

// NewBandTable parses every key of raw. An empty raw map yields an empty
// table, which only fails when it is resolved against.
func NewBandTable(name string, raw map[string]PricedEntity) (BandTable, error) {
	bands := make([]Band, 0, len(raw))
	for key, entity := range raw {
		lower, upper, err := ParseBandKey(key)
		if err != nil {
			return BandTable{}, fmt.Errorf("%s table: %w", name, err)
		}
		bands = append(bands, Band{Key: key, Lower: lower, Upper: upper, PricedEntity: entity})
	}
	sort.Slice(bands, func(i, j int) bool {
		if bands[i].Lower != bands[j].Lower {
			return bands[i].Lower < bands[j].Lower
		}
		return bands[i].Key < bands[j].Key
	})
	return BandTable{name: name, bands: bands}, nil
}

// Len is the number of bands in the table.
func (t BandTable) Len() int { return len(t.bands) }

// Locate returns the band containing value and its index. When no band
// contains value the lowest band is used instead, so a partially configured
// table still prices every input.
func (t BandTable) Locate(value float64) (Band, int, error) {
	if len(t.bands) == 0 {
		return Band{}, -1, &ConfigurationError{Table: t.name}
	}
	for i, b := range t.bands {
		if b.Contains(value) {
			return b, i, nil
		}
	}
	return t.bands[0], 0, nil
}

// Resolve returns the role price of the band containing value.
func (t BandTable) Resolve(value float64, role Role) (float64, error) {
	b, _, err := t.Locate(value)
	if err != nil {
		return 0, err
	}
	return Price(b.PricedEntity, role), nil
}
