package middleware

import (
	"context"

	"github.com/dromero-dev/casagrande-backend/pkg/enums"
)

type contextKey string

const (
	ctxActorID      contextKey = "actor_id"
	ctxCapabilities contextKey = "capabilities"
)

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

func CapabilitiesFromContext(ctx context.Context) []enums.Capability {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCapabilities).([]enums.Capability); ok {
		return v
	}
	return nil
}

// HasCapability reports whether the request actor carries the capability.
func HasCapability(ctx context.Context, cap enums.Capability) bool {
	for _, granted := range CapabilitiesFromContext(ctx) {
		if granted == cap {
			return true
		}
	}
	return false
}

// WithActorID injects the actor identifier into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorID, actorID)
}

// WithCapabilities injects the capability set into the context for downstream
// handlers.
func WithCapabilities(ctx context.Context, caps []enums.Capability) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCapabilities, caps)
}
