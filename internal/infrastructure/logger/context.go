package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	operatorKey  contextKey = "operator_id"
	storeKey     contextKey = "store_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context; a no-op logger if absent
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds the request ID to the context and returns an enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithOperator records the acting operator and their store on the context
func WithOperator(ctx context.Context, logger *zap.Logger, operatorID, storeID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, operatorKey, operatorID)
	ctx = context.WithValue(ctx, storeKey, storeID)
	enriched := logger.With(
		zap.String("operator_id", operatorID),
		zap.String("store_id", storeID),
	)
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetOperatorID retrieves the acting operator's ID from context
func GetOperatorID(ctx context.Context) string {
	if operatorID, ok := ctx.Value(operatorKey).(string); ok {
		return operatorID
	}
	return ""
}
