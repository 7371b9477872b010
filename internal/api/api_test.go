package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/service"
	"github.com/cloud-ru/rentability-go/internal/tools"
	"github.com/cloud-ru/rentability-go/internal/validators"
)

const sampleScenario = `{
  "property": {"surface": 50, "horizon": 10, "purchasePrice": 200000, "notaryFees": 15000, "renovationCost": 10000},
  "revenue": {"monthlyRent": 1000, "vacancyRate": 5},
  "charges": {"condoFees": 1200, "insurance": 300, "propertyTax": 900},
  "financing": {"loanAmount": 160000, "interestRate": 3, "durationMonths": 240},
  "tax": {"regime": "real", "marginalRate": 30, "socialContributionsRate": 17.2},
  "exit": {"method": "appreciation", "annualAppreciation": 1.5, "sellingCosts": 5},
  "discountRate": 4
}`

const sampleYAML = `
property: {surface: 50, horizon: 10, purchasePrice: 200000, notaryFees: 15000, renovationCost: 10000}
revenue: {monthlyRent: 1000, vacancyRate: 5}
charges: {condoFees: 1200, insurance: 300, propertyTax: 900}
financing: {loanAmount: 160000, interestRate: 3, durationMonths: 240}
tax: {regime: real, marginalRate: 30, socialContributionsRate: 17.2}
exit: {method: appreciation, annualAppreciation: 1.5, sellingCosts: 5}
discountRate: 4
`

type testConfig struct{}

func (testConfig) EngineLimits() validators.Limits {
	return validators.DefaultLimits()
}

func newTestRouter(opts Options) http.Handler {
	tracer := noop.NewTracerProvider().Tracer("test")
	svc := service.New(testConfig{}, tracer, time.Minute)
	return NewRouter(svc, tools.Registry(svc, tracer), opts)
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	router := newTestRouter(Options{})

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantStatus  int
		wantBody    string
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK, wantBody: calculations.CalculationVersion},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: "go_goroutines"},
		{name: "compute json", method: http.MethodPost, path: "/api/v1/rentability/compute", contentType: "application/json", body: sampleScenario, wantStatus: http.StatusOK, wantBody: "inputsHash"},
		{name: "compute yaml", method: http.MethodPost, path: "/api/v1/rentability/compute", contentType: "application/yaml", body: sampleYAML, wantStatus: http.StatusOK, wantBody: "yearlyResults"},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/rentability/compute", contentType: "application/json", body: "{", wantStatus: http.StatusBadRequest},
		{name: "validation error", method: http.MethodPost, path: "/api/v1/rentability/compute", contentType: "application/json", body: strings.Replace(sampleScenario, `"horizon": 10`, `"horizon": 0`, 1), wantStatus: http.StatusUnprocessableEntity, wantBody: "property.horizon"},
		{name: "unknown tool", method: http.MethodPost, path: "/api/v1/tools/nope", body: "{}", wantStatus: http.StatusNotFound},
		{name: "compute tool", method: http.MethodPost, path: "/api/v1/tools/" + tools.ComputeRentabilityTool, body: sampleScenario, wantStatus: http.StatusOK, wantBody: "cashflows"},
		{name: "verify missing fields", method: http.MethodPost, path: "/api/v1/rentability/verify", body: "{}", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.contentType, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body does not contain %q: %s", tt.wantBody, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestComputeThenVerify(t *testing.T) {
	router := newTestRouter(Options{})

	rec := do(t, router, http.MethodPost, "/api/v1/rentability/compute", "application/json", sampleScenario)
	if rec.Code != http.StatusOK {
		t.Fatalf("compute status = %d: %s", rec.Code, rec.Body.String())
	}
	var out calculations.RentabilityOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"input":              json.RawMessage(sampleScenario),
		"inputsHash":         out.InputsHash,
		"calculationVersion": out.CalculationVersion,
	})
	if err != nil {
		t.Fatal(err)
	}

	rec = do(t, router, http.MethodPost, "/api/v1/rentability/verify", "application/json", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d: %s", rec.Code, rec.Body.String())
	}
	var result tools.VerifyResult
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Error("certificate from compute should verify")
	}
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	if rec := do(t, router, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}

func TestInputsHashMatchesAcrossEntryPoints(t *testing.T) {
	router := newTestRouter(Options{})
	precise := strings.NewReplacer(
		`"purchasePrice": 200000`, `"purchasePrice": 200000.123456789012345`,
		`"interestRate": 3`, `"interestRate": 3.123456789012345678`,
	).Replace(sampleScenario)
	preciseYAML := strings.NewReplacer(
		"purchasePrice: 200000", "purchasePrice: 200000.123456789012345",
		"interestRate: 3", "interestRate: 3.123456789012345678",
	).Replace(sampleYAML)

	requests := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{name: "compute json", path: "/api/v1/rentability/compute", contentType: "application/json", body: precise},
		{name: "compute yaml", path: "/api/v1/rentability/compute", contentType: "application/yaml", body: preciseYAML},
		{name: "compute tool", path: "/api/v1/tools/" + tools.ComputeRentabilityTool, contentType: "application/json", body: precise},
	}

	var hashes []string
	for _, req := range requests {
		t.Run(req.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, req.path, req.contentType, req.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var out calculations.RentabilityOutput
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("failed to decode output: %v", err)
			}
			hashes = append(hashes, out.InputsHash)
		})
	}

	if len(hashes) != len(requests) {
		t.Fatalf("got %d hashes, want %d", len(hashes), len(requests))
	}
	for i := 1; i < len(hashes); i++ {
		if hashes[i] != hashes[0] {
			t.Errorf("%s hash %s differs from %s hash %s", requests[i].name, hashes[i], requests[0].name, hashes[0])
		}
	}
}

func TestMetricsUseRoutePatterns(t *testing.T) {
	router := newTestRouter(Options{})

	do(t, router, http.MethodPost, "/api/v1/tools/unknown-tool-7f3a", "application/json", "{}")
	do(t, router, http.MethodPost, "/api/v1/rentability/compute", "application/json", "{")

	rec := do(t, router, http.MethodGet, "/metrics", "", "")
	body := rec.Body.String()
	if strings.Contains(body, "unknown-tool-7f3a") {
		t.Error("metrics contain the raw request path")
	}
	for _, want := range []string{
		`endpoint="/api/v1/tools/{name}"`,
		`endpoint="/api/v1/rentability/compute"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics do not contain %s", want)
		}
	}
}

func TestRateLimitedRequestsShareOneLabel(t *testing.T) {
	router := newTestRouter(Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	do(t, router, http.MethodGet, "/healthz", "", "")
	do(t, router, http.MethodGet, "/random-path-91c2", "", "")

	open := newTestRouter(Options{})
	body := do(t, open, http.MethodGet, "/metrics", "", "").Body.String()
	if strings.Contains(body, "random-path-91c2") {
		t.Error("rate limited request leaked its path into metrics")
	}
	if !strings.Contains(body, `endpoint="*",service="http",status="rate_limited"`) {
		t.Error("rate limited request was not counted under the shared label")
	}
}
