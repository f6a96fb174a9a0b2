package execution

import (
	"context"
	"reflect"
)

// ContextKey is the context key of *Context.
var ContextKey = KeyOf[*Context]()

// WithContext returns ctx carrying the execution context, so executors can
// reach run state through their context.Context.
func WithContext(ctx context.Context, ec *Context) context.Context {
	return context.WithValue(ctx, ContextKey, ec)
}

// FromContext returns the execution context carried by ctx, or nil.
func FromContext(ctx context.Context) *Context {
	return ContextValue[*Context](ctx)
}

// ContextValue returns the value of the provided type from the context
func ContextValue[T any](ctx context.Context) T {
	key := KeyOf[T]()
	if value := ctx.Value(key); value != nil {
		if ret, ok := value.(T); ok {
			return ret
		}
	}
	var t T
	return t
}

// KeyOf returns the reflect.Type of the provided type
func KeyOf[T any]() reflect.Type {
	var a T
	return reflect.TypeOf(a)
}
