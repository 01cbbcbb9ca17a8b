package service

import "context"

type requestIDKey struct{}

// WithRequestID 在上下文中记录请求ID，用于日志关联
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 取出请求ID，没有时返回空串
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
