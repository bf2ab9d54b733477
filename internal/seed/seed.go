package seed

import (
	"context"
	"fmt"

	"github.com/Simplici0/dealcost/internal/pricingconfig"
	"github.com/Simplici0/dealcost/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	// PricingFile is an optional YAML file merged over the built-in pricing.
	PricingFile string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run stores the default pricing config when none exists yet. It never
// overwrites pricing an administrator has already saved.
func Run(ctx context.Context, s *store.Store, cfg Config) (Stats, error) {
	empty, err := s.Empty(ctx)
	if err != nil {
		return Stats{}, err
	}
	if !empty {
		return Stats{}, nil
	}

	doc, err := pricingconfig.Load(cfg.PricingFile)
	if err != nil {
		return Stats{}, fmt.Errorf("load seed pricing config: %w", err)
	}

	written, err := s.Replace(ctx, doc)
	if err != nil {
		return Stats{}, fmt.Errorf("store seed pricing config: %w", err)
	}

	return Stats{Inserts: written}, nil
}
