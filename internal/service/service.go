package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/logger"
	"github.com/cloud-ru/rentability-go/internal/metrics"
	"github.com/cloud-ru/rentability-go/internal/validators"
)

// Service выполняет расчеты рентабельности с кэшированием, метриками и
// трейсингом. Безопасен для конкурентного использования.
type Service struct {
	cfg    calculations.ConfigInterface
	cache  *cache.Cache
	tracer trace.Tracer
}

// New создает сервис. ttl задает время жизни результата в кэше.
func New(cfg calculations.ConfigInterface, tracer trace.Tracer, ttl time.Duration) *Service {
	return &Service{
		cfg:    cfg,
		cache:  cache.New(ttl, 2*ttl),
		tracer: tracer,
	}
}

func cacheKey(hash string) string {
	return calculations.CalculationVersion + ":" + hash
}

// Compute рассчитывает сценарий. Повторный расчет того же сценария той же
// версией движка возвращается из кэша: результат детерминирован. Каждый
// вызов получает собственную копию, изменения в ней не попадают в кэш.
func (s *Service) Compute(ctx context.Context, in calculations.RentabilityInput) (*calculations.RentabilityOutput, error) {
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	log := logger.FromContext(ctx)

	ctx, span := s.tracer.Start(ctx, "rentability.compute")
	defer span.End()
	span.SetAttributes(attribute.String("request_id", requestID))

	hash, err := calculations.InputsHash(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash")
		metrics.Computations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ошибка расчета отпечатка входных данных: %w", err)
	}
	span.SetAttributes(attribute.String("inputs_hash", hash))

	if cached, ok := s.cache.Get(cacheKey(hash)); ok {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		metrics.Computations.WithLabelValues("cached").Inc()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		log.Debug("результат взят из кэша", zap.String("inputs_hash", hash))
		return cached.(*calculations.RentabilityOutput).Clone(), nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	started := time.Now()
	out, err := calculations.Compute(s.cfg, in)
	metrics.ComputeDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute")

		var ve *validators.ValidationError
		if errors.As(err, &ve) {
			metrics.Computations.WithLabelValues("validation_error").Inc()
			log.Info("сценарий не прошел валидацию", zap.String("inputs_hash", hash), zap.Int("fields", len(ve.Fields)))
			return nil, err
		}
		metrics.Computations.WithLabelValues("error").Inc()
		log.Error("ошибка расчета", zap.String("inputs_hash", hash), zap.Error(err))
		return nil, fmt.Errorf("ошибка при выполнении расчета: %w", err)
	}

	for _, w := range out.Warnings {
		metrics.Warnings.WithLabelValues(w.Code).Inc()
	}
	metrics.IrrIterations.Observe(float64(out.Result.Metadata.IrrIterations))
	metrics.Computations.WithLabelValues("success").Inc()

	span.SetAttributes(
		attribute.Bool("cache_hit", false),
		attribute.Bool("certified", out.IsCertified),
		attribute.Int("warnings", len(out.Warnings)),
		attribute.Int("horizon", out.Result.Metadata.Horizon),
	)
	log.Info("расчет выполнен",
		zap.String("inputs_hash", hash),
		zap.Int("horizon", out.Result.Metadata.Horizon),
		zap.String("regime", out.Result.Metadata.Regime),
		zap.Int("warnings", len(out.Warnings)),
		zap.Int64("duration_ms", time.Since(started).Milliseconds()),
	)

	s.cache.Set(cacheKey(out.InputsHash), out.Clone(), cache.DefaultExpiration)
	return out, nil
}

// Verify проверяет сертификат расчета для сценария
func (s *Service) Verify(ctx context.Context, in calculations.RentabilityInput, inputsHash, version string) (bool, error) {
	_, span := s.tracer.Start(ctx, "rentability.verify")
	defer span.End()

	ok, err := calculations.VerifyCertificate(in, inputsHash, version)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("ошибка проверки сертификата: %w", err)
	}
	span.SetAttributes(attribute.Bool("valid", ok))
	logger.FromContext(ctx).Info("проверка сертификата", zap.String("inputs_hash", inputsHash), zap.Bool("valid", ok))
	return ok, nil
}

// CachedItems возвращает число результатов в кэше
func (s *Service) CachedItems() int {
	return s.cache.ItemCount()
}
