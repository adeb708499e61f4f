package domain

import "context"

type actorKey struct{}

// WithActorType tags mutations made under ctx with the given actor.
func WithActorType(ctx context.Context, actor ActorType) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorTypeFromContext(ctx context.Context) ActorType {
	if ctx == nil {
		return ActorTypeSystem
	}
	if actor, ok := ctx.Value(actorKey{}).(ActorType); ok && actor != "" {
		return actor
	}
	return ActorTypeSystem
}
