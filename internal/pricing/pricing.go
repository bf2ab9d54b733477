package pricing

import "fmt"

// Terms and Escalations list the contract shapes a deal may be priced for.
var (
	Terms       = []int{36, 48, 60}
	Escalations = []int{0, 10, 15}
)

// DealInput is everything needed to price one deal.
type DealInput struct {
	Hardware     []LineItem
	Connectivity []LineItem
	Licensing    []LineItem
	Term         int
	Escalation   int
	Distance     float64
	Role         Role
	// CustomGrossProfit overrides the gross-profit scale when non-nil.
	CustomGrossProfit *float64
}

// Validate checks the numeric contract of a deal: a supported term and
// escalation, a non-negative distance and non-negative quantities.
func (in DealInput) Validate() error {
	if !containsInt(Terms, in.Term) {
		return fmt.Errorf("term must be one of %v", Terms)
	}
	if !containsInt(Escalations, in.Escalation) {
		return fmt.Errorf("escalation must be one of %v", Escalations)
	}
	if in.Distance < 0 {
		return fmt.Errorf("distance must be greater than or equal to 0")
	}
	for _, group := range []struct {
		name  string
		items []LineItem
	}{
		{"hardware", in.Hardware},
		{"connectivity", in.Connectivity},
		{"licensing", in.Licensing},
	} {
		for i, item := range group.items {
			if item.SelectedQuantity < 0 {
				return fmt.Errorf("%s[%d].selectedQuantity must be greater than or equal to 0", group.name, i)
			}
			if item.IsExtension && group.name != "hardware" {
				return fmt.Errorf("%s[%d].isExtension is only valid for hardware", group.name, i)
			}
		}
	}
	return nil
}

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// DealTotals is the complete cost breakdown of a deal. Amounts are unrounded.
type DealTotals struct {
	ExtensionCount           int     `json:"extensionCount"`
	HardwareTotal            float64 `json:"hardwareTotal"`
	InstallationBase         float64 `json:"installationBase"`
	ExtensionTotal           float64 `json:"extensionTotal"`
	FuelTotal                float64 `json:"fuelTotal"`
	InstallationTotal        float64 `json:"installationTotal"`
	GrossProfit              float64 `json:"grossProfit"`
	FinanceAmount            float64 `json:"financeAmount"`
	FinanceFactor            float64 `json:"financeFactor"`
	HardwareRental           float64 `json:"hardwareRental"`
	ConnectivityTotal        float64 `json:"connectivityTotal"`
	LicensingTotal           float64 `json:"licensingTotal"`
	TotalMRC                 float64 `json:"totalMRC"`
	RepresentativeSettlement float64 `json:"representativeSettlement"`
	ActualSettlement         float64 `json:"actualSettlement"`
	FinanceFee               float64 `json:"financeFee"`
	FinanceFeeIterations     int     `json:"financeFeeIterations"`
	TotalPayout              float64 `json:"totalPayout"`
	TotalExVAT               float64 `json:"totalExVAT"`
	TotalWithVAT             float64 `json:"totalWithVAT"`
}

// FinanceFeeConverged reports whether the finance-fee band stabilised before
// the iteration cap. When it did not, the fee and payout are the last
// estimate.
func (t DealTotals) FinanceFeeConverged() bool {
	return t.FinanceFeeIterations < MaxFinanceIterations
}

// CalculateAllTotals prices a deal. The hardware rental feeds the monthly
// recurring charge, which the actual settlement and finance fee depend on,
// so the rental is computed ahead of both settlements.
func CalculateAllTotals(in DealInput, scales Scales, factors FactorSheet) (DealTotals, error) {
	var t DealTotals

	t.ExtensionCount = ExtensionCount(in.Hardware)
	inst, err := CalculateInstallation(t.ExtensionCount, in.Distance, scales, in.Role)
	if err != nil {
		return DealTotals{}, err
	}
	t.InstallationBase = inst.Base
	t.ExtensionTotal = inst.Extension
	t.FuelTotal = inst.Fuel
	t.InstallationTotal = inst.Total

	t.HardwareTotal = Total(in.Hardware, in.Role)
	t.ConnectivityTotal = Total(in.Connectivity, in.Role)
	t.LicensingTotal = Total(in.Licensing, in.Role)

	if t.GrossProfit, err = GrossProfit(in.CustomGrossProfit, t.ExtensionCount, scales, in.Role); err != nil {
		return DealTotals{}, err
	}

	t.FinanceAmount = t.HardwareTotal + t.InstallationTotal + t.GrossProfit
	if t.FinanceFactor, err = factors.Factor(in.Term, in.Escalation, t.FinanceAmount); err != nil {
		return DealTotals{}, err
	}
	t.HardwareRental = t.FinanceAmount * t.FinanceFactor
	t.TotalMRC = t.HardwareRental + t.ConnectivityTotal + t.LicensingTotal

	t.RepresentativeSettlement = RepresentativeSettlement(t.HardwareTotal, t.InstallationTotal, in.Escalation, in.Term)
	t.ActualSettlement = ActualSettlement(t.RepresentativeSettlement, t.TotalMRC, in.Term)

	fee, err := ConvergeFinanceFee(t.ActualSettlement, scales.FinanceFee, in.Role)
	if err != nil {
		return DealTotals{}, err
	}
	t.FinanceFee = fee.Fee
	t.FinanceFeeIterations = fee.Iterations
	t.TotalPayout = fee.TotalPayout

	t.TotalExVAT = t.TotalMRC
	t.TotalWithVAT = CalculateVAT(t.TotalExVAT)
	return t, nil
}
