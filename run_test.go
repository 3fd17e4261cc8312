package grove

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ARTM2000/grove/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	// newRequestRegistry registers one request-scoped hooked class.
	newRequestRegistry := func(t *testing.T, rec *recorder) (*Registry, Key[*hooked]) {
		t.Helper()
		key := NewKey[*hooked]("Unit")
		reg := NewRegistry()
		mustOK(t, Provide(reg, key, func() (*hooked, error) {
			return &hooked{name: "unit", rec: rec}, nil
		}, WithScope(Request)))
		return reg, key
	}

	t.Run("returns data and ends the request scope", func(t *testing.T) {
		rec := &recorder{}
		reg, key := newRequestRegistry(t, rec)

		res := Run(ctx, reg, func(ctx context.Context, r *Resolver) (string, error) {
			h, err := Resolve(ctx, r, key)
			if err != nil {
				return "", err
			}
			return h.Name(), nil
		})

		require.True(t, res.OK())
		assert.Equal(t, "unit", res.Data)
		assert.Equal(t, []string{"init:unit", "destroy:unit"}, rec.list())
	})

	t.Run("structured error keeps message code and status", func(t *testing.T) {
		rec := &recorder{}
		reg, key := newRequestRegistry(t, rec)

		res := Run(ctx, reg, func(ctx context.Context, r *Resolver) (int, error) {
			if _, err := Resolve(ctx, r, key); err != nil {
				return 0, err
			}
			return 0, apperr.Validation("bad input")
		})

		require.False(t, res.OK())
		assert.Equal(t, &apperr.Body{Message: "bad input", Code: apperr.CodeValidation, Status: 422}, res.Error)
		assert.Zero(t, res.Data)
		assert.Equal(t, []string{"init:unit", "destroy:unit"}, rec.list())
	})

	t.Run("wrapped structured error is recognized", func(t *testing.T) {
		reg := NewRegistry()
		res := Run(ctx, reg, func(context.Context, *Resolver) (int, error) {
			return 0, errors.Join(errors.New("lookup"), apperr.NotFound("no such note"))
		})

		assert.Equal(t, &apperr.Body{Message: "no such note", Code: apperr.CodeNotFound, Status: 404}, res.Error)
	})

	t.Run("unknown error becomes generic", func(t *testing.T) {
		rec := &recorder{}
		reg, key := newRequestRegistry(t, rec)

		res := Run(ctx, reg, func(ctx context.Context, r *Resolver) (int, error) {
			_, _ = Resolve(ctx, r, key)
			return 0, errBoom
		})

		assert.Equal(t, apperr.Internal().Body(), res.Error)
		assert.Equal(t, []string{"init:unit", "destroy:unit"}, rec.list())
	})

	t.Run("configuration error becomes generic", func(t *testing.T) {
		res := Run(ctx, NewRegistry(), func(ctx context.Context, r *Resolver) (*testLogger, error) {
			return Resolve(ctx, r, loggerKey)
		})

		assert.Equal(t, &apperr.Body{Message: "Internal Server Error", Code: "UNKNOWN", Status: 500}, res.Error)
	})

	t.Run("panic becomes generic and still ends the scope", func(t *testing.T) {
		rec := &recorder{}
		reg, key := newRequestRegistry(t, rec)

		res := Run(ctx, reg, func(ctx context.Context, r *Resolver) (int, error) {
			_, _ = Resolve(ctx, r, key)
			panic("unexpected")
		})

		assert.Equal(t, apperr.Internal().Body(), res.Error)
		assert.Equal(t, []string{"init:unit", "destroy:unit"}, rec.list())
	})

	t.Run("teardown runs after the caller's context is cancelled", func(t *testing.T) {
		rec := &recorder{}
		reg, key := newRequestRegistry(t, rec)
		cctx, cancel := context.WithCancel(ctx)

		res := Run(cctx, reg, func(ctx context.Context, r *Resolver) (int, error) {
			_, _ = Resolve(ctx, r, key)
			cancel()
			return 1, nil
		})

		assert.True(t, res.OK())
		assert.Contains(t, rec.list(), "destroy:unit")
	})
}

func TestRunSession(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	registerLayered(t, reg, Request)
	root := New(reg)

	first := RunSession(ctx, root, func(ctx context.Context, r *Resolver) (*testUserService, error) {
		return Resolve(ctx, r, userServiceKey)
	})
	second := RunSession(ctx, root, func(ctx context.Context, r *Resolver) (*testUserService, error) {
		return Resolve(ctx, r, userServiceKey)
	})

	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.NotSame(t, first.Data, second.Data)
	assert.Same(t, first.Data.Logger, second.Data.Logger)
	assert.Equal(t, 0, root.Stats().Requests)
}

func TestRunWith(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	registerLayered(t, reg, Request)
	session := New(reg).NewSession()

	var seen *Resolver
	res := RunWith(ctx, session, func(ctx context.Context, r *Resolver) (*testUserService, error) {
		seen = r
		return Resolve(ctx, r, userServiceKey)
	})
	require.True(t, res.OK())
	assert.Same(t, session, seen)

	again, err := Resolve(ctx, session, userServiceKey)
	require.NoError(t, err)
	assert.Same(t, res.Data, again, "the owner's request scope is left open")

	failed := RunWith(ctx, session, func(context.Context, *Resolver) (int, error) {
		panic("unexpected")
	})
	assert.Equal(t, apperr.Internal().Body(), failed.Error)
	assert.True(t, session.Cached(userServiceKey.Class))

	require.NoError(t, session.EndRequestScope(ctx))
	assert.Zero(t, session.Stats().Requests)
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Run("data", func(t *testing.T) {
		b, err := json.Marshal(Result[map[string]int]{Data: map[string]int{"n": 1}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"n":1}}`, string(b))
	})

	t.Run("error", func(t *testing.T) {
		b, err := json.Marshal(Result[int]{Error: apperr.NotFound("gone").Body()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":{"message":"gone","code":"NOT_FOUND","status":404}}`, string(b))
	})
}
