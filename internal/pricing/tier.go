package pricing

import "fmt"

// Role selects which price tier is read from a priced entity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ParseRole validates a role name supplied by a caller.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleUser:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// PricedEntity carries the three tier prices of one item or band.
type PricedEntity struct {
	Cost        float64 `json:"cost" yaml:"cost"`
	ManagerCost float64 `json:"managerCost" yaml:"managerCost"`
	UserCost    float64 `json:"userCost" yaml:"userCost"`
}

// Price returns the field of e matching role. Roles other than admin and
// manager read the user price.
func Price(e PricedEntity, role Role) float64 {
	switch role {
	case RoleAdmin:
		return e.Cost
	case RoleManager:
		return e.ManagerCost
	default:
		return e.UserCost
	}
}

// LineItem is a priced hardware, connectivity or licensing entry on a deal.
type LineItem struct {
	PricedEntity     `yaml:",inline"`
	Name             string `json:"name,omitempty" yaml:"name,omitempty"`
	SelectedQuantity int    `json:"selectedQuantity" yaml:"selectedQuantity"`
	// IsExtension is only meaningful for hardware.
	IsExtension bool `json:"isExtension,omitempty" yaml:"isExtension,omitempty"`
}

// Total sums the role price times the selected quantity over items.
func Total(items []LineItem, role Role) float64 {
	total := 0.0
	for _, item := range items {
		if item.SelectedQuantity == 0 {
			continue
		}
		total += Price(item.PricedEntity, role) * float64(item.SelectedQuantity)
	}
	return total
}

// AdditionalCosts holds the per-kilometer and per-point rates for every tier.
type AdditionalCosts struct {
	CostPerKilometer        float64 `json:"cost_per_kilometer" yaml:"cost_per_kilometer"`
	CostPerPoint            float64 `json:"cost_per_point" yaml:"cost_per_point"`
	ManagerCostPerKilometer float64 `json:"manager_cost_per_kilometer" yaml:"manager_cost_per_kilometer"`
	ManagerCostPerPoint     float64 `json:"manager_cost_per_point" yaml:"manager_cost_per_point"`
	UserCostPerKilometer    float64 `json:"user_cost_per_kilometer" yaml:"user_cost_per_kilometer"`
	UserCostPerPoint        float64 `json:"user_cost_per_point" yaml:"user_cost_per_point"`
}

// Rates is the rate pair selected for one role.
type Rates struct {
	PerKilometer float64
	PerPoint     float64
}

// RatesFor selects the additional-cost rates matching role.
func RatesFor(costs AdditionalCosts, role Role) Rates {
	switch role {
	case RoleAdmin:
		return Rates{PerKilometer: costs.CostPerKilometer, PerPoint: costs.CostPerPoint}
	case RoleManager:
		return Rates{PerKilometer: costs.ManagerCostPerKilometer, PerPoint: costs.ManagerCostPerPoint}
	default:
		return Rates{PerKilometer: costs.UserCostPerKilometer, PerPoint: costs.UserCostPerPoint}
	}
}
