package ncconf

import "context"

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
)

// WithFailFast returns a child context that marks fail-fast validation.
// Validators stop at the first issue when it is set.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current validation should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
