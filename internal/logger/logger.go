package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L - глобальный логгер. До вызова InitLogger ничего не пишет.
var L = zap.NewNop()

type contextKey string

const requestIDKey = contextKey("request_id")

// InitLogger настраивает глобальный JSON-логгер с выводом в stdout
func InitLogger(logLevel string) {
	InitLoggerWithWriter(logLevel, os.Stdout)
}

// InitLoggerWithWriter настраивает глобальный JSON-логгер с выводом в w
func InitLoggerWithWriter(logLevel string, w io.Writer) {
	level, known := parseLevel(logLevel)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level)
	L = zap.New(core)

	if !known {
		L.Warn("неизвестный LOG_LEVEL, используется INFO", zap.String("configured_level", logLevel))
	}
	L.Info("логгер инициализирован", zap.String("level", level.String()))
}

func parseLevel(logLevel string) (zapcore.Level, bool) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// WithRequestID сохраняет идентификатор запроса в контексте
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID возвращает идентификатор запроса из контекста
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext возвращает логгер с идентификатором запроса, если он есть
func FromContext(ctx context.Context) *zap.Logger {
	if id := RequestID(ctx); id != "" {
		return L.With(zap.String("request_id", id))
	}
	return L
}
