package core

import "context"

// Context keys for analysis options
type contextKey string

const suppressProgressKey contextKey = "suppressProgress"

// WithSuppressProgress disables the progress bar for multi-file runs in this context.
func WithSuppressProgress(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressProgressKey, true)
}

// shouldSuppressProgress returns whether the progress bar should be hidden
func shouldSuppressProgress(ctx context.Context) bool {
	val := ctx.Value(suppressProgressKey)
	if val == nil {
		return false // default: show progress
	}
	suppress, ok := val.(bool)
	return ok && suppress
}
