package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/logger"
	"github.com/cloud-ru/rentability-go/internal/metrics"
	"github.com/cloud-ru/rentability-go/internal/scenario"
	"github.com/cloud-ru/rentability-go/internal/service"
	"github.com/cloud-ru/rentability-go/internal/tools"
	"github.com/cloud-ru/rentability-go/internal/validators"
)

const maxBodyBytes = 1 << 20

// Метки endpoint для метрик. Ограничитель срабатывает до маршрутизации,
// поэтому шаблон маршрута ему неизвестен.
const (
	rateLimitedEndpoint = "*"
	unmatchedEndpoint   = "unmatched"
)

// Options - параметры HTTP-адаптера
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type handler struct {
	svc   *service.Service
	tools map[string]tools.ToolHandler
}

type verifyRequest struct {
	Input              json.RawMessage `json:"input"`
	InputsHash         string          `json:"inputsHash"`
	CalculationVersion string          `json:"calculationVersion"`
}

type errorResponse struct {
	Error     string                  `json:"error"`
	Fields    []validators.FieldError `json:"fields,omitempty"`
	RequestID string                  `json:"requestId,omitempty"`
}

// NewRouter собирает HTTP-маршруты сервиса
func NewRouter(svc *service.Service, registry map[string]tools.ToolHandler, opts Options) http.Handler {
	h := &handler{svc: svc, tools: registry}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	limit := rate.Limit(opts.RateLimitRPS)
	if opts.RateLimitRPS <= 0 {
		limit = rate.Inf
	}
	r.Use(rateLimit(rate.NewLimiter(limit, opts.RateLimitBurst)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "calculationVersion": calculations.CalculationVersion})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rentability/compute", h.compute)
		r.Post("/rentability/verify", h.verify)
		r.Post("/tools/{name}", h.callTool)
	})

	return r
}

// requestID присваивает запросу идентификатор и кладет его в контекст логгера
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				metrics.APICalls.WithLabelValues("http", rateLimitedEndpoint, "rate_limited").Inc()
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// scenarioFormat выбирает формат тела по Content-Type, по умолчанию JSON
func scenarioFormat(r *http.Request) string {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "yaml"):
		return scenario.FormatYAML
	case strings.Contains(contentType, "hjson"):
		return scenario.FormatHJSON
	default:
		return scenario.FormatJSON
	}
}

func (h *handler) compute(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	input, err := scenario.Decode(body, scenarioFormat(r))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	out, err := h.svc.Compute(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	metrics.APICalls.WithLabelValues("http", "compute", "success").Inc()
	logger.FromContext(r.Context()).Debug("compute handled", zap.Int64("duration_ms", time.Since(started).Milliseconds()))
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if len(req.Input) == 0 || req.InputsHash == "" || req.CalculationVersion == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("input, inputsHash и calculationVersion обязательны"))
		return
	}

	input, err := scenario.Decode(req.Input, scenario.FormatJSON)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	valid, err := h.svc.Verify(r.Context(), input, req.InputsHash, req.CalculationVersion)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	metrics.APICalls.WithLabelValues("http", "verify", "success").Inc()
	writeJSON(w, http.StatusOK, tools.VerifyResult{
		Valid:              valid,
		InputsHash:         req.InputsHash,
		CalculationVersion: req.CalculationVersion,
	})
}

func (h *handler) callTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tool, ok := h.tools[name]
	if !ok {
		writeError(w, r, http.StatusNotFound, errors.New("неизвестный инструмент: "+name))
		return
	}

	// UseNumber сохраняет десятичные значения без округления до float64
	var params map[string]interface{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := tool(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// endpointLabel возвращает шаблон маршрута chi вместо сырого пути, чтобы
// кардинальность метрик не зависела от входящих URL
func endpointLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedEndpoint
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validators.ValidationError
	if errors.As(err, &ve) {
		metrics.APICalls.WithLabelValues("http", endpointLabel(r), "validation_error").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     err.Error(),
			Fields:    ve.Fields,
			RequestID: logger.RequestID(r.Context()),
		})
		return
	}
	logger.FromContext(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status != http.StatusInternalServerError {
		metrics.APICalls.WithLabelValues("http", endpointLabel(r), "error").Inc()
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: logger.RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("failed to encode response", zap.Error(err))
	}
}
