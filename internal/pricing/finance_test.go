package pricing

import (
	"math"
	"testing"
)

func TestConvergeFinanceFee_StableOnFirstIteration(t *testing.T) {
	scales := testScales(t)

	got, err := ConvergeFinanceFee(18000, scales.FinanceFee, RoleAdmin)
	if err != nil {
		t.Fatalf("ConvergeFinanceFee: %v", err)
	}
	if got.Iterations != 1 {
		t.Fatalf("iterations = %d, want 1", got.Iterations)
	}
	nearlyEqual(t, "fee", got.Fee, 1800)
	nearlyEqual(t, "payout", got.TotalPayout, 19800)
}

func TestConvergeFinanceFee_CrossesIntoNextBand(t *testing.T) {
	scales := testScales(t)

	got, err := ConvergeFinanceFee(19000, scales.FinanceFee, RoleAdmin)
	if err != nil {
		t.Fatalf("ConvergeFinanceFee: %v", err)
	}
	if got.Iterations != 2 {
		t.Fatalf("iterations = %d, want 2", got.Iterations)
	}
	nearlyEqual(t, "fee", got.Fee, 2800)
	nearlyEqual(t, "payout", got.TotalPayout, 21800)
}

func TestConvergeFinanceFee_TerminatesAcrossRange(t *testing.T) {
	scales := testScales(t)

	for _, role := range []Role{RoleAdmin, RoleManager, RoleUser} {
		for settlement := 10000.0; settlement <= 200000; settlement += 997.3 {
			got, err := ConvergeFinanceFee(settlement, scales.FinanceFee, role)
			if err != nil {
				t.Fatalf("ConvergeFinanceFee(%v): %v", settlement, err)
			}
			if got.Iterations < 1 || got.Iterations > MaxFinanceIterations {
				t.Fatalf("iterations = %d for %v", got.Iterations, settlement)
			}
			if math.Abs(got.TotalPayout-(settlement+got.Fee)) > 0.005 {
				t.Fatalf("payout %v != settlement %v + fee %v", got.TotalPayout, settlement, got.Fee)
			}
		}
	}
}

func TestConvergeFinanceFee_OscillationStopsAtCap(t *testing.T) {
	// A fee that pushes the payout out of its band, and a band whose fee
	// pulls it back, never stabilises.
	table, err := NewBandTable(TableFinanceFee, map[string]PricedEntity{
		"0-150": {Cost: 100, ManagerCost: 100, UserCost: 100},
		"151+":  {Cost: 0, ManagerCost: 0, UserCost: 0},
	})
	if err != nil {
		t.Fatalf("build table: %v", err)
	}

	got, err := ConvergeFinanceFee(100, table, RoleAdmin)
	if err != nil {
		t.Fatalf("ConvergeFinanceFee: %v", err)
	}
	if got.Iterations != MaxFinanceIterations {
		t.Fatalf("iterations = %d, want %d", got.Iterations, MaxFinanceIterations)
	}
	nearlyEqual(t, "payout", got.TotalPayout, 100+got.Fee)
}

func TestConvergeFinanceFee_EmptyTable(t *testing.T) {
	table, _ := NewBandTable(TableFinanceFee, nil)

	_, err := ConvergeFinanceFee(50000, table, RoleAdmin)
	if err == nil || err.Error() != "finance fee band not found" {
		t.Fatalf("expected finance fee band not found, got %v", err)
	}
}

func TestCalculateVAT(t *testing.T) {
	for _, amount := range []float64{0, 1, 99.99, 2139, 123456.78} {
		got := CalculateVAT(amount)
		if math.Abs(got-amount*1.15) > 0.005 {
			t.Fatalf("CalculateVAT(%v) = %v", amount, got)
		}
	}
}

func TestRepresentativeAndActualSettlement(t *testing.T) {
	rep := RepresentativeSettlement(13000, 7400, 10, 36)
	nearlyEqual(t, "representative", rep, 27152.4)

	nearlyEqual(t, "no escalation", RepresentativeSettlement(1000, 500, 0, 60), 1500)
	nearlyEqual(t, "actual", ActualSettlement(rep, 2139, 36), 104156.4)
}
