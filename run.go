package grove

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ARTM2000/grove/apperr"
	"github.com/pkg/errors"
)

// Result is the outcome of a unit of work run through [Run]. Exactly one of
// Data and Error is meaningful: Error is nil on success.
type Result[T any] struct {
	Data  T
	Error *apperr.Body
}

// OK reports whether the unit of work succeeded.
func (r Result[T]) OK() bool { return r.Error == nil }

// MarshalJSON encodes r as {"data": ...} or {"error": {...}}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			Error *apperr.Body `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		Data T `json:"data"`
	}{r.Data})
}

// Run creates a fresh [Resolver] for reg, runs fn against it and ends the
// request scope before returning, whether fn returned, failed or panicked.
//
// Structured [apperr.Error] failures are reported with their own message,
// code and status; anything else becomes [apperr.Internal].
func Run[T any](ctx context.Context, reg *Registry, fn func(ctx context.Context, r *Resolver) (T, error), opts ...ResolverOption) Result[T] {
	return run(ctx, New(reg, opts...), true, fn)
}

// RunSession is like [Run] but resolves from a new session of root, so
// singletons are shared with root and every other session.
func RunSession[T any](ctx context.Context, root *Resolver, fn func(ctx context.Context, r *Resolver) (T, error)) Result[T] {
	return run(ctx, root.NewSession(), true, fn)
}

// RunWith runs fn against r and converts the outcome the way [Run] does, but
// leaves r's request scope alone. The caller that opened r owns the scope
// and ends it.
func RunWith[T any](ctx context.Context, r *Resolver, fn func(ctx context.Context, r *Resolver) (T, error)) Result[T] {
	return run(ctx, r, false, fn)
}

func run[T any](ctx context.Context, r *Resolver, endScope bool, fn func(ctx context.Context, r *Resolver) (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			err, ok := p.(error)
			if !ok {
				err = errors.Errorf("%v", p)
			}
			res = failure[T](ctx, r, errors.Wrap(err, "panic in unit of work"))
		}

		if !endScope {
			return
		}
		// Teardown must not be skipped because the caller's context ended.
		if err := r.EndRequestScope(context.WithoutCancel(ctx)); err != nil {
			r.logger.ErrorContext(ctx, "ending request scope", "error", err)
		}
	}()

	data, err := fn(ctx, r)
	if err != nil {
		return failure[T](ctx, r, err)
	}
	return Result[T]{Data: data}
}

func failure[T any](ctx context.Context, r *Resolver, err error) Result[T] {
	body := apperr.Normalize(err)
	if _, ok := apperr.As(err); !ok {
		r.logger.ErrorContext(ctx, "unit of work failed", "error", fmt.Sprintf("%+v", err))
	}
	return Result[T]{Error: body}
}
