package settings

import "context"

type runKey struct{}

// IntoContext returns a child context carrying the run settings. The CLI
// stores its per-invocation parameters here so helpers deep in the call
// chain can consult them without threading another argument through.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runKey{}, s)
}

// FromContext returns the run settings stored by IntoContext, if any.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(runKey{}).(*Run)
	return s, ok
}
