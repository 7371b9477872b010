package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/validators"
)

const sampleScenario = `{
  "property": {"surface": 50, "horizon": 10, "purchasePrice": 200000, "notaryFees": 15000, "renovationCost": 10000},
  "revenue": {"monthlyRent": 1000, "indexationMethod": "irl", "indexationRate": 1.5, "vacancyRate": 5},
  "charges": {"condoFees": 1200, "insurance": 300, "propertyTax": 900, "maintenanceRate": 1, "chargesIncrease": 2},
  "financing": {"loanAmount": 160000, "interestRate": 3, "durationMonths": 240, "insuranceRate": 0.3},
  "tax": {"regime": "real", "marginalRate": 30, "socialContributionsRate": 17.2, "deficitCarryForward": true},
  "exit": {"method": "appreciation", "annualAppreciation": 1.5, "sellingCosts": 5, "capitalGainsTaxRate": 19},
  "discountRate": 4
}`

type testConfig struct{}

func (testConfig) EngineLimits() validators.Limits {
	return validators.DefaultLimits()
}

func sampleInput(t *testing.T) calculations.RentabilityInput {
	t.Helper()
	var in calculations.RentabilityInput
	if err := json.Unmarshal([]byte(sampleScenario), &in); err != nil {
		t.Fatalf("failed to decode scenario: %v", err)
	}
	return in
}

func newTestService() *Service {
	return New(testConfig{}, noop.NewTracerProvider().Tracer("test"), time.Minute)
}

func TestServiceComputeCaches(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Compute(ctx, sampleInput(t))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if svc.CachedItems() != 1 {
		t.Fatalf("CachedItems() = %d, want 1", svc.CachedItems())
	}

	second, err := svc.Compute(ctx, sampleInput(t))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if first == second {
		t.Error("cache hit must return a copy, not the cached pointer")
	}
	if first.InputsHash != second.InputsHash || len(first.Result.YearlyResults) != len(second.Result.YearlyResults) {
		t.Error("second call should be served from cache with the same result")
	}
	if svc.CachedItems() != 1 {
		t.Errorf("CachedItems() = %d, want 1", svc.CachedItems())
	}

	changed := sampleInput(t)
	changed.Revenue.VacancyRate = changed.Revenue.VacancyRate.Add(changed.Revenue.VacancyRate)
	third, err := svc.Compute(ctx, changed)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if third.InputsHash == first.InputsHash {
		t.Error("different scenarios must have different hashes")
	}
	if svc.CachedItems() != 2 {
		t.Errorf("CachedItems() = %d, want 2", svc.CachedItems())
	}
}

func TestServiceComputeValidationError(t *testing.T) {
	svc := newTestService()
	in := sampleInput(t)
	in.DiscountRate = nil

	_, err := svc.Compute(context.Background(), in)
	var ve *validators.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if svc.CachedItems() != 0 {
		t.Error("failed computations must not be cached")
	}
}

func TestServiceVerify(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := sampleInput(t)

	out, err := svc.Compute(ctx, in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	tests := []struct {
		name    string
		hash    string
		version string
		want    bool
	}{
		{name: "valid", hash: out.InputsHash, version: out.CalculationVersion, want: true},
		{name: "wrong hash", hash: "00", version: out.CalculationVersion, want: false},
		{name: "wrong version", hash: out.InputsHash, version: "rentability-engine/0.1.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(ctx, in, tt.hash, tt.version)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceCacheIsolatedFromCallers(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Compute(ctx, sampleInput(t))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if first.Result.Kpis.Irr == nil {
		t.Fatalf("expected finite IRR, warnings: %v", first.Warnings)
	}
	want := first.Result.YearlyResults[0].NetRevenue
	wantCashflow := first.Result.Cashflows[0]
	wantIrr := *first.Result.Kpis.Irr

	first.Result.YearlyResults[0].NetRevenue = decimal.NewFromInt(-1)
	first.Result.Cashflows[0] = decimal.NewFromInt(-1)
	*first.Result.Kpis.Irr = decimal.NewFromInt(-1)
	first.Warnings = append(first.Warnings, calculations.Warning{Code: "mutated"})

	second, err := svc.Compute(ctx, sampleInput(t))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !second.Result.YearlyResults[0].NetRevenue.Equal(want) {
		t.Errorf("NetRevenue = %s, want %s", second.Result.YearlyResults[0].NetRevenue, want)
	}
	if !second.Result.Cashflows[0].Equal(wantCashflow) {
		t.Errorf("Cashflows[0] = %s, want %s", second.Result.Cashflows[0], wantCashflow)
	}
	if second.Result.Kpis.Irr == nil || !second.Result.Kpis.Irr.Equal(wantIrr) {
		t.Errorf("Irr = %v, want %s", second.Result.Kpis.Irr, wantIrr)
	}
	for _, w := range second.Warnings {
		if w.Code == "mutated" {
			t.Error("caller warning leaked into the cache")
		}
	}
}
