package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/dealcost/internal/pricing"
	"github.com/Simplici0/dealcost/internal/pricingconfig"
	"github.com/Simplici0/dealcost/internal/report"
)

type dealRequest struct {
	Role              string             `json:"role"`
	Term              int                `json:"term"`
	Escalation        int                `json:"escalation"`
	Distance          float64            `json:"distance"`
	Hardware          []pricing.LineItem `json:"hardware"`
	Connectivity      []pricing.LineItem `json:"connectivity"`
	Licensing         []pricing.LineItem `json:"licensing"`
	CustomGrossProfit *float64           `json:"custom_gross_profit"`
}

type dealResponse struct {
	CalculationID  string             `json:"calculation_id"`
	PricingVersion string             `json:"pricing_version,omitempty"`
	Totals         pricing.DealTotals `json:"totals"`
}

func (s *server) handleDealCalculate(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := parseDealRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("load pricing config", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load pricing config")
		return
	}
	scales, factors, err := pricingconfig.Compile(doc)
	if err != nil {
		s.logger.Error("compile pricing config", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	totals, err := pricing.CalculateAllTotals(in, scales, factors)
	if err != nil {
		if errors.Is(err, pricing.ErrBandNotFound) {
			s.logger.Error("pricing config incomplete", zap.Error(err), zap.String("role", string(in.Role)))
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id := uuid.NewString()
	if !totals.FinanceFeeConverged() {
		s.logger.Warn("finance fee did not converge",
			zap.String("calculation_id", id),
			zap.Float64("actual_settlement", totals.ActualSettlement),
			zap.Int("iterations", totals.FinanceFeeIterations),
		)
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Calculation-Id", id)
		_ = report.WriteDeal(w, totals, s.currency)
		return
	}

	respondJSON(w, http.StatusOK, dealResponse{
		CalculationID:  id,
		PricingVersion: doc.Version,
		Totals:         totals,
	})
}

func parseDealRequest(req dealRequest) (pricing.DealInput, error) {
	role, err := pricing.ParseRole(req.Role)
	if err != nil {
		return pricing.DealInput{}, err
	}

	in := pricing.DealInput{
		Hardware:          req.Hardware,
		Connectivity:      req.Connectivity,
		Licensing:         req.Licensing,
		Term:              req.Term,
		Escalation:        req.Escalation,
		Distance:          req.Distance,
		Role:              role,
		CustomGrossProfit: req.CustomGrossProfit,
	}
	if err := in.Validate(); err != nil {
		return pricing.DealInput{}, err
	}
	return in, nil
}
