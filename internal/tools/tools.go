package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/metrics"
	"github.com/cloud-ru/rentability-go/internal/scenario"
	"github.com/cloud-ru/rentability-go/internal/service"
	"github.com/cloud-ru/rentability-go/internal/validators"
)

// Имена инструментов
const (
	ComputeRentabilityTool = "compute_rentability"
	VerifyCertificateTool  = "verify_rentability_certificate"
)

// ToolHandler представляет обработчик инструмента MCP
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// VerifyResult - ответ инструмента проверки сертификата
type VerifyResult struct {
	Valid              bool   `json:"valid"`
	InputsHash         string `json:"inputsHash"`
	CalculationVersion string `json:"calculationVersion"`
}

// Registry возвращает все инструменты по именам
func Registry(svc *service.Service, tracer trace.Tracer) map[string]ToolHandler {
	return map[string]ToolHandler{
		ComputeRentabilityTool: ComputeRentabilityHandler(svc, tracer),
		VerifyCertificateTool:  VerifyCertificateHandler(svc, tracer),
	}
}

// decodeInput преобразует параметры инструмента в сценарий через JSON
func decodeInput(params interface{}) (calculations.RentabilityInput, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return calculations.RentabilityInput{}, fmt.Errorf("invalid parameters: %w", err)
	}
	return scenario.Decode(raw, scenario.FormatJSON)
}

// ComputeRentabilityHandler обрабатывает запрос на расчет рентабельности.
// Параметры инструмента - сам сценарий RentabilityInput.
func ComputeRentabilityHandler(svc *service.Service, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := ComputeRentabilityTool

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		input, err := decodeInput(params)
		if err != nil {
			span.SetAttributes(attribute.String("error", "invalid_parameters"))
			metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
			metrics.CalculationErrors.WithLabelValues(toolName, "decode").Inc()
			metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
			return nil, fmt.Errorf("неверные параметры: %w", err)
		}

		span.SetAttributes(
			attribute.Int("horizon", input.Property.Horizon),
			attribute.String("regime", input.Tax.Regime),
			attribute.String("valuation_method", input.Exit.Method),
		)

		result, err := svc.Compute(ctx, input)
		if err != nil {
			var ve *validators.ValidationError
			if errors.As(err, &ve) {
				span.SetAttributes(attribute.String("error", "validation_error"))
				metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
				metrics.CalculationErrors.WithLabelValues(toolName, "validation").Inc()
				metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
				return nil, fmt.Errorf("неверные параметры: %w", err)
			}
			span.SetAttributes(attribute.String("error", "calculation_error"))
			metrics.ToolCalls.WithLabelValues(toolName, "error").Inc()
			metrics.CalculationErrors.WithLabelValues(toolName, "calculation").Inc()
			metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
			return nil, err
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("certified", result.IsCertified),
			attribute.String("inputs_hash", result.InputsHash),
		)
		metrics.ToolCalls.WithLabelValues(toolName, "success").Inc()
		metrics.APICalls.WithLabelValues("mcp", toolName, "success").Inc()

		return result, nil
	}
}

// VerifyCertificateHandler проверяет, что хэш и версия соответствуют сценарию.
// Параметры: input (сценарий), inputsHash, calculationVersion.
func VerifyCertificateHandler(svc *service.Service, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := VerifyCertificateTool

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		hash, ok := params["inputsHash"].(string)
		if !ok {
			metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
			return nil, fmt.Errorf("invalid parameter: inputsHash")
		}
		version, ok := params["calculationVersion"].(string)
		if !ok {
			metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
			return nil, fmt.Errorf("invalid parameter: calculationVersion")
		}
		rawInput, ok := params["input"]
		if !ok {
			metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
			return nil, fmt.Errorf("invalid parameter: input")
		}

		input, err := decodeInput(rawInput)
		if err != nil {
			span.SetAttributes(attribute.String("error", "invalid_parameters"))
			metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
			metrics.CalculationErrors.WithLabelValues(toolName, "decode").Inc()
			metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
			return nil, fmt.Errorf("неверные параметры: %w", err)
		}

		valid, err := svc.Verify(ctx, input, hash, version)
		if err != nil {
			span.SetAttributes(attribute.String("error", "calculation_error"))
			metrics.ToolCalls.WithLabelValues(toolName, "error").Inc()
			metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
			return nil, err
		}

		span.SetAttributes(attribute.Bool("success", true), attribute.Bool("valid", valid))
		metrics.ToolCalls.WithLabelValues(toolName, "success").Inc()
		metrics.APICalls.WithLabelValues("mcp", toolName, "success").Inc()

		return VerifyResult{Valid: valid, InputsHash: hash, CalculationVersion: version}, nil
	}
}
