// Package report formats engine results for people. Amounts are rounded
// to two decimals here and nowhere earlier.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/dealcost/internal/pricing"
)

// Round2 rounds a currency amount half away from zero to two decimals.
func Round2(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// Amount renders a currency amount with exactly two decimals.
func Amount(amount float64) string {
	return Round2(amount).StringFixed(2)
}

// WriteDeal writes a plain-text cost breakdown of a priced deal.
func WriteDeal(w io.Writer, t pricing.DealTotals, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line := func(label string, amount float64) {
		fmt.Fprintf(tw, "%s:\t%s %s\t\n", label, Amount(amount), currency)
	}

	fmt.Fprintln(tw, "Installation:")
	fmt.Fprintf(tw, "Extensions:\t%d\t\n", t.ExtensionCount)
	line("Installation base", t.InstallationBase)
	line("Extension cost", t.ExtensionTotal)
	line("Fuel cost", t.FuelTotal)
	line("Installation total", t.InstallationTotal)
	fmt.Fprintln(tw, "\t\t")

	fmt.Fprintln(tw, "Finance:")
	line("Hardware total", t.HardwareTotal)
	line("Gross profit", t.GrossProfit)
	line("Finance amount", t.FinanceAmount)
	fmt.Fprintf(tw, "Finance factor:\t%s\t\n", decimal.NewFromFloat(t.FinanceFactor).String())
	line("Representative settlement", t.RepresentativeSettlement)
	line("Actual settlement", t.ActualSettlement)
	line("Finance fee", t.FinanceFee)
	line("Total payout", t.TotalPayout)
	if !t.FinanceFeeConverged() {
		fmt.Fprintf(tw, "Warning:\tfinance fee did not settle after %d iterations\t\n", t.FinanceFeeIterations)
	}
	fmt.Fprintln(tw, "\t\t")

	fmt.Fprintln(tw, "Monthly:")
	line("Hardware rental", t.HardwareRental)
	line("Connectivity", t.ConnectivityTotal)
	line("Licensing", t.LicensingTotal)
	line("Total MRC (ex VAT)", t.TotalExVAT)
	line("Total (incl VAT)", t.TotalWithVAT)

	return tw.Flush()
}

// WriteSettlement writes the year-by-year payoff schedule of an existing rental.
func WriteSettlement(w io.Writer, s pricing.Settlement, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Year\tPeriod\tMonthly\tAmount\tStatus\t")
	for _, yr := range s.Years {
		status := "completed"
		if !yr.IsCompleted {
			status = fmt.Sprintf("%d months remaining", yr.MonthsRemaining)
		}
		fmt.Fprintf(tw, "%d\t%s - %s\t%s\t%s\t%s\t\n",
			yr.Year,
			yr.StartDate.Format("2006-01-02"),
			yr.EndDate.Format("2006-01-02"),
			Amount(yr.MonthlyRate),
			Amount(yr.Amount),
			status,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Current monthly rental: %s %s\n", Amount(s.CurrentMonthlyRate), currency)
	fmt.Fprintf(w, "Remaining settlement: %s %s\n", Amount(s.RemainingSettlement), currency)
	_, err := fmt.Fprintf(w, "Total settlement: %s %s\n", Amount(s.TotalSettlement), currency)
	return err
}
