package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	CustomerIDKey contextKey = "customer_id"
	TokenKey      contextKey = "token"
	logInfoKey    contextKey = "log_info"
)

// LogInfo is placed in the context by the access logger. Inner middlewares
// fill it in so the log line sees values set on derived requests.
type LogInfo struct {
	CustomerID uuid.UUID
}

func WithLogInfo(ctx context.Context) (context.Context, *LogInfo) {
	info := &LogInfo{}
	return context.WithValue(ctx, logInfoKey, info), info
}

func LogInfoFromContext(ctx context.Context) *LogInfo {
	info, _ := ctx.Value(logInfoKey).(*LogInfo)
	return info
}

// GetCustomerIDFromContext returns the signed-in customer, if any.
// Anonymous requests have none.
func GetCustomerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(CustomerIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	idStr, ok := val.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func SetCustomerContext(ctx context.Context, customerID uuid.UUID) context.Context {
	if info := LogInfoFromContext(ctx); info != nil {
		info.CustomerID = customerID
	}
	return context.WithValue(ctx, CustomerIDKey, customerID.String())
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
