package pricing

import "math"

// MaxFinanceIterations bounds the finance-fee fixed-point search. A result
// with Iterations == MaxFinanceIterations may not have converged.
const MaxFinanceIterations = 10

// VATRate is the fixed VAT applied to deal totals.
const VATRate = 0.15

// FinanceFee is the converged finance fee and the payout it was charged on.
type FinanceFee struct {
	Fee         float64
	TotalPayout float64
	Iterations  int
}

// ConvergeFinanceFee resolves payout = settlement + fee(payout). The fee is
// read from the band holding the current estimate; iteration stops once
// the new estimate lands in the same band. When the cap is reached the last
// estimate is returned.
func ConvergeFinanceFee(actualSettlement float64, table BandTable, role Role) (FinanceFee, error) {
	estimate := actualSettlement
	result := FinanceFee{TotalPayout: estimate}

	for i := 1; i <= MaxFinanceIterations; i++ {
		band, idx, err := table.Locate(estimate)
		if err != nil {
			return FinanceFee{}, err
		}
		fee := Price(band.PricedEntity, role)
		next := actualSettlement + fee

		_, nextIdx, err := table.Locate(next)
		if err != nil {
			return FinanceFee{}, err
		}

		result = FinanceFee{Fee: fee, TotalPayout: next, Iterations: i}
		if nextIdx == idx {
			break
		}
		estimate = next
	}
	return result, nil
}

// RepresentativeSettlement compounds the capital cost once over the whole
// contract life at the deal's escalation.
func RepresentativeSettlement(hardwareTotal, installationTotal float64, escalation, term int) float64 {
	growth := math.Pow(1+float64(escalation)/100, float64(term)/12)
	return (hardwareTotal + installationTotal) * growth
}

// ActualSettlement adds the monthly recurring charge over the full term.
func ActualSettlement(representative, totalMRC float64, term int) float64 {
	return representative + totalMRC*float64(term)
}

// CalculateVAT returns amount including VAT.
func CalculateVAT(amount float64) float64 {
	return amount * (1 + VATRate)
}
