package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout covers most database operations
	DefaultTimeout = 10 * time.Second

	// LongTimeout covers slow paths (external engine calls, exports)
	LongTimeout = 30 * time.Second

	// ShortTimeout covers quick operations (cache lookups)
	ShortTimeout = 2 * time.Second
)

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}

func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}
