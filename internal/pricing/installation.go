package pricing

// Installation is the installation cost breakdown of a deal.
type Installation struct {
	Base      float64
	Extension float64
	Fuel      float64
	Total     float64
}

// ExtensionCount sums the selected quantity of extension hardware.
func ExtensionCount(hardware []LineItem) int {
	count := 0
	for _, item := range hardware {
		if item.IsExtension {
			count += item.SelectedQuantity
		}
	}
	return count
}

// CalculateInstallation prices the installation from the sliding scale,
// then adds the per-point extension cost and the per-kilometer fuel cost.
func CalculateInstallation(extensionCount int, distance float64, scales Scales, role Role) (Installation, error) {
	base, err := scales.Installation.Resolve(float64(extensionCount), role)
	if err != nil {
		return Installation{}, err
	}

	rates := RatesFor(scales.AdditionalCosts, role)
	extension := float64(extensionCount) * rates.PerPoint
	fuel := distance * rates.PerKilometer

	return Installation{
		Base:      base,
		Extension: extension,
		Fuel:      fuel,
		Total:     base + extension + fuel,
	}, nil
}

// GrossProfit returns custom when the caller supplied one, including zero
// or negative values. Otherwise it reads the gross-profit scale.
func GrossProfit(custom *float64, extensionCount int, scales Scales, role Role) (float64, error) {
	if custom != nil {
		return *custom, nil
	}
	return scales.GrossProfit.Resolve(float64(extensionCount), role)
}
