package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/dealcost/internal/pricing"
	"github.com/Simplici0/dealcost/internal/report"
)

const dateLayout = "2006-01-02"

type settlementRequest struct {
	StartDate      string  `json:"start_date"`
	RentalAmount   float64 `json:"rental_amount"`
	RentalType     string  `json:"rental_type"`
	EscalationRate int     `json:"escalation_rate"`
	RentalTerm     int     `json:"rental_term"`
	AsOf           string  `json:"as_of,omitempty"`
}

type settlementResponse struct {
	CalculationID string             `json:"calculation_id"`
	AsOf          string             `json:"as_of"`
	Settlement    pricing.Settlement `json:"settlement"`
}

func (s *server) handleSettlementCalculate(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, asOf, err := parseSettlementRequest(req, s.now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settlement := pricing.ProjectSettlement(in, asOf)
	id := uuid.NewString()

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Calculation-Id", id)
		_ = report.WriteSettlement(w, settlement, s.currency)
		return
	}

	respondJSON(w, http.StatusOK, settlementResponse{
		CalculationID: id,
		AsOf:          pricing.CalendarDate(asOf).Format(dateLayout),
		Settlement:    settlement,
	})
}

func parseSettlementRequest(req settlementRequest, now time.Time) (pricing.SettlementInput, time.Time, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return pricing.SettlementInput{}, time.Time{}, errors.New("start_date must be YYYY-MM-DD")
	}

	asOf := now
	if req.AsOf != "" {
		if asOf, err = time.Parse(dateLayout, req.AsOf); err != nil {
			return pricing.SettlementInput{}, time.Time{}, errors.New("as_of must be YYYY-MM-DD")
		}
	}

	in := pricing.SettlementInput{
		StartDate:      start,
		RentalAmount:   req.RentalAmount,
		RentalType:     pricing.RentalType(req.RentalType),
		EscalationRate: req.EscalationRate,
		RentalTerm:     req.RentalTerm,
	}
	if err := in.Validate(); err != nil {
		return pricing.SettlementInput{}, time.Time{}, err
	}
	return in, asOf, nil
}
