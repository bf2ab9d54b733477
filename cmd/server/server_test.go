package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/dealcost/internal/db"
	"github.com/Simplici0/dealcost/internal/migrations"
	"github.com/Simplici0/dealcost/internal/seed"
	"github.com/Simplici0/dealcost/internal/store"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database, zap.NewNop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	s := store.New(database)
	if _, err := seed.Run(ctx, s, seed.Config{}); err != nil {
		t.Fatalf("failed to seed pricing config: %v", err)
	}

	return &server{
		store:    s,
		logger:   zap.NewNop(),
		currency: "ZAR",
		now:      func() time.Time { return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC) },
	}
}

func doRequest(t *testing.T, srv *server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

const dealBody = `{
	"role": "admin",
	"term": 36,
	"escalation": 0,
	"distance": 100,
	"hardware": [
		{"name": "Desk phone", "cost": 1000, "managerCost": 1200, "userCost": 1400, "selectedQuantity": 5, "isExtension": true},
		{"name": "PBX", "cost": 8000, "managerCost": 9000, "userCost": 10000, "selectedQuantity": 1}
	],
	"connectivity": [
		{"name": "Fibre 100", "cost": 300, "managerCost": 350, "userCost": 400, "selectedQuantity": 2}
	],
	"licensing": []
}`

func TestHealth(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestPricingConfigReturnsSeededDefaults(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodGet, "/api/pricing", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var doc struct {
		Version string `json:"version"`
		Scales  struct {
			Installation map[string]any `json:"installation"`
		} `json:"scales"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc.Version != "2024.1" {
		t.Fatalf("expected version 2024.1, got %q", doc.Version)
	}
	if len(doc.Scales.Installation) != 5 {
		t.Fatalf("expected 5 installation bands, got %d", len(doc.Scales.Installation))
	}
}

func TestDealCalculate(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/deals/calculate", dealBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp dealResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.CalculationID == "" {
		t.Fatalf("expected calculation_id")
	}
	if resp.PricingVersion != "2024.1" {
		t.Fatalf("expected pricing version 2024.1, got %q", resp.PricingVersion)
	}

	totals := resp.Totals
	if totals.ExtensionCount != 5 || totals.HardwareTotal != 13000 || totals.ConnectivityTotal != 600 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.FinanceAmount != totals.HardwareTotal+totals.InstallationTotal+totals.GrossProfit {
		t.Fatalf("finance amount mismatch: %+v", totals)
	}
	if totals.TotalMRC <= totals.ConnectivityTotal || totals.TotalWithVAT <= totals.TotalExVAT {
		t.Fatalf("unexpected monthly totals: %+v", totals)
	}
	if totals.TotalPayout != totals.ActualSettlement+totals.FinanceFee {
		t.Fatalf("payout mismatch: %+v", totals)
	}
}

func TestDealCalculateTextFormat(t *testing.T) {
	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/deals/calculate?format=text", dealBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
	if rr.Header().Get("X-Calculation-Id") == "" {
		t.Fatalf("expected X-Calculation-Id header")
	}
	if !strings.Contains(rr.Body.String(), "ZAR") {
		t.Fatalf("expected currency in report, got:\n%s", rr.Body.String())
	}
}

func TestDealCalculateRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"malformed json":    `{"role":`,
		"unsupported term":  `{"role": "admin", "term": 24, "escalation": 0}`,
		"unsupported esc":   `{"role": "admin", "term": 36, "escalation": 7}`,
		"negative distance": `{"role": "admin", "term": 36, "escalation": 0, "distance": -1}`,
		"negative quantity": `{"role": "admin", "term": 36, "escalation": 0, "hardware": [{"name": "x", "selectedQuantity": -2}]}`,
		"extension licence": `{"role": "admin", "term": 36, "escalation": 0, "licensing": [{"name": "x", "isExtension": true}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/api/deals/calculate", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error body, got %s", rr.Body.String())
			}
		})
	}
}

func TestDealCalculateRolePricing(t *testing.T) {
	srv := newTestServer(t)

	hardwareFor := func(role string) float64 {
		body := strings.Replace(dealBody, `"role": "admin"`, `"role": "`+role+`"`, 1)
		rr := doRequest(t, srv, http.MethodPost, "/api/deals/calculate", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("role %q: expected 200, got %d: %s", role, rr.Code, rr.Body.String())
		}
		var resp dealResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return resp.Totals.HardwareTotal
	}

	if got := hardwareFor("manager"); got != 5*1200+9000 {
		t.Fatalf("manager hardware total = %v", got)
	}
	if got := hardwareFor("user"); got != 5*1400+10000 {
		t.Fatalf("user hardware total = %v", got)
	}

	body := strings.Replace(dealBody, `"role": "admin"`, `"role": "sales"`, 1)
	if rr := doRequest(t, srv, http.MethodPost, "/api/deals/calculate", body); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", rr.Code)
	}
}

func TestSettlementCalculate(t *testing.T) {
	body := `{
		"start_date": "2024-01-01",
		"rental_amount": 1000,
		"rental_type": "starting",
		"escalation_rate": 10,
		"rental_term": 36,
		"as_of": "2025-06-15"
	}`
	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/settlements/calculate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp settlementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	s := resp.Settlement
	if len(s.Years) != 3 {
		t.Fatalf("expected 3 years, got %d", len(s.Years))
	}
	if !s.Years[0].IsCompleted || s.Years[1].IsCompleted {
		t.Fatalf("unexpected completion flags: %+v", s.Years)
	}
	if math.Abs(s.RemainingSettlement-(13200+14520)) > 1e-6 {
		t.Fatalf("remaining settlement = %v, want %v", s.RemainingSettlement, 13200+14520)
	}
	if resp.AsOf != "2025-06-15" {
		t.Fatalf("as_of = %q", resp.AsOf)
	}
}

func TestSettlementCalculateDefaultsAsOfToNow(t *testing.T) {
	body := `{"start_date": "2024-01-01", "rental_amount": 500, "rental_type": "current", "escalation_rate": 0, "rental_term": 24}`
	rr := doRequest(t, newTestServer(t), http.MethodPost, "/api/settlements/calculate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp settlementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.AsOf != "2025-06-15" {
		t.Fatalf("expected as_of from server clock, got %q", resp.AsOf)
	}
}

func TestSettlementCalculateRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"bad date":       `{"start_date": "01/01/2024", "rental_amount": 1, "rental_type": "starting", "escalation_rate": 0, "rental_term": 12}`,
		"bad type":       `{"start_date": "2024-01-01", "rental_amount": 1, "rental_type": "future", "escalation_rate": 0, "rental_term": 12}`,
		"bad escalation": `{"start_date": "2024-01-01", "rental_amount": 1, "rental_type": "starting", "escalation_rate": 12, "rental_term": 12}`,
		"zero term":      `{"start_date": "2024-01-01", "rental_amount": 1, "rental_type": "starting", "escalation_rate": 0, "rental_term": 0}`,
		"negative rent":  `{"start_date": "2024-01-01", "rental_amount": -1, "rental_type": "starting", "escalation_rate": 0, "rental_term": 12}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/api/settlements/calculate", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSettlementCalculateUsesServerCalendarDay(t *testing.T) {
	srv := newTestServer(t)
	srv.now = func() time.Time {
		return time.Date(2025, time.January, 1, 0, 30, 0, 0, time.FixedZone("SAST", 2*60*60))
	}

	body := `{"start_date": "2024-01-01", "rental_amount": 100, "rental_type": "starting", "escalation_rate": 0, "rental_term": 24}`
	rr := doRequest(t, srv, http.MethodPost, "/api/settlements/calculate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp settlementResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.AsOf != "2025-01-01" {
		t.Fatalf("as_of = %q, want 2025-01-01", resp.AsOf)
	}
	if !resp.Settlement.Years[0].IsCompleted {
		t.Fatalf("year ending on the server's calendar day should be completed")
	}
	if math.Abs(resp.Settlement.RemainingSettlement-1200) > 1e-6 {
		t.Fatalf("remaining settlement = %v, want 1200", resp.Settlement.RemainingSettlement)
	}
}
