package grove

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Resolve is a generic helper that resolves a typed key. It is the
// recommended way to retrieve values:
//
//	repo, err := grove.Resolve(ctx, r, UserRepoKey)
func Resolve[T any](ctx context.Context, r *Resolver, key Key[T]) (T, error) {
	var zero T

	val, err := r.Resolve(ctx, key.Class)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	out, ok := val.(T)
	if !ok {
		return zero, errors.Errorf("%s: cannot convert %T to %s", key, val, reflect.TypeFor[T]())
	}

	return out, nil
}

// Inject is a generic helper that resolves the class registered under token
// and converts it to T:
//
//	svc, err := grove.Inject[NoteService](ctx, r, "notes")
func Inject[T any](ctx context.Context, r *Resolver, token string) (T, error) {
	var zero T

	val, err := r.GetInjection(ctx, token)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	out, ok := val.(T)
	if !ok {
		return zero, errors.Errorf("token %q: cannot convert %T to %s", token, val, reflect.TypeFor[T]())
	}

	return out, nil
}

// MustResolve is like [Resolve] but panics on error. It is meant for
// composition roots where a missing registration is a programming error.
func MustResolve[T any](ctx context.Context, r *Resolver, key Key[T]) T {
	v, err := Resolve(ctx, r, key)
	if err != nil {
		panic(fmt.Sprintf("grove: %+v", err))
	}
	return v
}
