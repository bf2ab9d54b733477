package pricing

import (
	"fmt"
	"math"
	"time"
)

// RentalType says which point of an existing contract RentalAmount refers to.
type RentalType string

const (
	// RentalStarting means the amount is the year-1 monthly rental.
	RentalStarting RentalType = "starting"
	// RentalCurrent means the amount is the monthly rental being paid today.
	RentalCurrent RentalType = "current"
)

// ParseRentalType validates a rental type supplied by a caller.
func ParseRentalType(raw string) (RentalType, error) {
	switch RentalType(raw) {
	case RentalStarting, RentalCurrent:
		return RentalType(raw), nil
	}
	return "", fmt.Errorf("unknown rental type %q", raw)
}

// SettlementInput describes the existing rental being paid off.
type SettlementInput struct {
	StartDate      time.Time
	RentalAmount   float64
	RentalType     RentalType
	EscalationRate int
	RentalTerm     int
}

// SettlementEscalations lists the escalation rates an existing rental may carry.
var SettlementEscalations = []int{0, 5, 10, 15}

// Validate checks the numeric contract of a settlement request.
func (in SettlementInput) Validate() error {
	if _, err := ParseRentalType(string(in.RentalType)); err != nil {
		return err
	}
	if in.RentalAmount < 0 {
		return fmt.Errorf("rental amount must be greater than or equal to 0")
	}
	if !containsInt(SettlementEscalations, in.EscalationRate) {
		return fmt.Errorf("escalation rate must be one of %v", SettlementEscalations)
	}
	if in.RentalTerm <= 0 {
		return fmt.Errorf("rental term must be greater than 0")
	}
	return nil
}

// SettlementYear is one contract year of the payoff schedule.
type SettlementYear struct {
	Year            int       `json:"year"`
	MonthlyRate     float64   `json:"monthlyRate"`
	Amount          float64   `json:"amount"`
	MonthsRemaining int       `json:"monthsRemaining"`
	IsCompleted     bool      `json:"isCompleted"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
}

// Settlement is the projected payoff of an existing rental.
type Settlement struct {
	Years               []SettlementYear `json:"years"`
	CurrentMonthlyRate  float64          `json:"currentMonthlyRate"`
	TotalSettlement     float64          `json:"totalSettlement"`
	RemainingSettlement float64          `json:"remainingSettlement"`
}

// ProjectSettlement builds the year-by-year schedule of in as seen at asOf.
// Both dates are compared as calendar days. A year is completed once its
// end date is not after asOf. Each year's amount is the full escalated
// rental for the term months it covers.
func ProjectSettlement(in SettlementInput, asOf time.Time) Settlement {
	years := (in.RentalTerm + 11) / 12
	if in.RentalTerm <= 0 {
		return Settlement{Years: []SettlementYear{}}
	}
	contractStart := CalendarDate(in.StartDate)
	asOf = CalendarDate(asOf)

	growth := 1 + float64(in.EscalationRate)/100
	schedule := make([]SettlementYear, 0, years)
	elapsed := 0
	for y := 1; y <= years; y++ {
		start, end := contractYear(contractStart, y, in.RentalTerm)
		completed := !end.After(asOf)
		if completed && y < years {
			elapsed++
		}
		schedule = append(schedule, SettlementYear{
			Year:        y,
			IsCompleted: completed,
			StartDate:   start,
			EndDate:     end,
		})
	}

	firstRate := in.RentalAmount
	if in.RentalType != RentalStarting {
		firstRate = in.RentalAmount / math.Pow(growth, float64(elapsed))
	}

	out := Settlement{Years: schedule}
	for i := range schedule {
		yr := &schedule[i]
		yr.MonthlyRate = firstRate * math.Pow(growth, float64(yr.Year-1))
		yr.Amount = yr.MonthlyRate * float64(termMonths(yr.Year, in.RentalTerm))
		if !yr.IsCompleted {
			yr.MonthsRemaining = termMonths(yr.Year, in.RentalTerm)
			if asOf.After(yr.StartDate) {
				yr.MonthsRemaining = min(yr.MonthsRemaining, monthsBetween(asOf, yr.EndDate))
			}
			out.RemainingSettlement += yr.Amount
		}
		out.TotalSettlement += yr.Amount
	}
	out.CurrentMonthlyRate = schedule[elapsed].MonthlyRate
	return out
}

// CalendarDate returns the calendar day of t, in t's own location, as UTC
// midnight.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// termMonths is the number of contract months falling in year y.
func termMonths(y, term int) int {
	return min(12, term-12*(y-1))
}

// contractYear returns the [start, end) span of contract year y, truncating
// the final year to the rental term.
func contractYear(contractStart time.Time, y, term int) (time.Time, time.Time) {
	startMonths := 12 * (y - 1)
	return addMonths(contractStart, startMonths), addMonths(contractStart, startMonths+termMonths(y, term))
}

// addMonths moves t forward n calendar months, clamping the day to the end
// of the target month so that Jan 31 + 1 month is Feb 28, not Mar 3.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), lastDay), 0, 0, 0, 0, t.Location())
}

// monthsBetween counts calendar months from a to b, rounding a partial
// month up.
func monthsBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() > a.Day() {
		months++
	}
	return months
}
