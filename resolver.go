package grove

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Resolver builds instances from a [Registry] and caches them per scope.
//
// A Resolver owns a request scope and shares a singleton scope with every
// session forked from it through [Resolver.NewSession]. All methods are
// safe for concurrent use.
type Resolver struct {
	registry *Registry
	cfg      resolverConfig
	logger   *slog.Logger
	session  string

	singletons *store
	request    *store
	verified   *verifiedSet
}

// Stats reports how many instances are cached in each scope.
type Stats struct {
	Singletons int
	Requests   int
}

// New creates a resolver for reg with empty scopes.
func New(reg *Registry, opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newResolver(reg, cfg, newStore(Singleton), newVerifiedSet())
}

func newResolver(reg *Registry, cfg resolverConfig, singletons *store, verified *verifiedSet) *Resolver {
	id := uuid.NewString()
	return &Resolver{
		registry:   reg,
		cfg:        cfg,
		logger:     cfg.logger.With("session", id),
		session:    id,
		singletons: singletons,
		request:    newStore(Request),
		verified:   verified,
	}
}

// NewSession returns a resolver that shares r's singletons but has its own,
// empty request scope. Servers keep one root resolver and open a session
// per incoming request.
func (r *Resolver) NewSession() *Resolver {
	return newResolver(r.registry, r.cfg, r.singletons, r.verified)
}

// SessionID identifies the request scope of r in logs.
func (r *Resolver) SessionID() string { return r.session }

// Registry returns the registry r resolves from.
func (r *Resolver) Registry() *Registry { return r.registry }

// Logger returns the logger of r, tagged with its session id.
func (r *Resolver) Logger() *slog.Logger { return r.logger }

// Resolve returns the instance of cls, building it and its dependencies as
// needed. Prefer the generic [Resolve] helper.
//
// A class that is already cached in its scope is returned without running
// its constructor or hooks again. Otherwise the dependencies are resolved
// (concurrently unless [WithSequentialDeps] is set), passed to the factory
// in declaration order, and the instance's OnInit hook runs before the
// instance is cached and returned.
func (r *Resolver) Resolve(ctx context.Context, cls *Class) (any, error) {
	reg, ok := r.registry.Lookup(cls)
	if !ok {
		return nil, errors.Wrapf(ErrNotRegistered, "%s", cls)
	}

	st := r.storeFor(reg.Scope)
	if inst, ok, err := st.get(cls); err != nil {
		return nil, errors.WithMessagef(err, "resolving %s", cls)
	} else if ok {
		return inst, nil
	}

	if err := r.verify(cls); err != nil {
		return nil, err
	}
	return r.build(ctx, cls, reg, st)
}

// GetInjection resolves the class registered under token. Prefer the generic
// [Inject] helper.
func (r *Resolver) GetInjection(ctx context.Context, token string) (any, error) {
	cls, ok := r.registry.LookupToken(token)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownToken, "%q", token)
	}
	return r.Resolve(ctx, cls)
}

// EndRequestScope tears down every request-scoped instance of r, one at a
// time, and empties the request scope. Calling it on an empty scope does
// nothing.
func (r *Resolver) EndRequestScope(ctx context.Context) error {
	return r.request.teardown(ctx, r.logger)
}

// Shutdown tears down every singleton, one at a time, dependents before
// their dependencies. Singletons are shared between sessions, so shutting
// down any of them shuts down all of them. Subsequent calls return
// [ErrAlreadyShutdown].
func (r *Resolver) Shutdown(ctx context.Context) error {
	return r.singletons.close(ctx, r.logger)
}

// Cached reports whether cls currently has an instance in its scope.
func (r *Resolver) Cached(cls *Class) bool {
	reg, ok := r.registry.Lookup(cls)
	if !ok {
		return false
	}
	return r.storeFor(reg.Scope).has(cls)
}

// Stats returns the number of cached instances per scope.
func (r *Resolver) Stats() Stats {
	return Stats{
		Singletons: r.singletons.len(),
		Requests:   r.request.len(),
	}
}

func (r *Resolver) storeFor(s Scope) *store {
	if s == Request {
		return r.request
	}
	return r.singletons
}

// resolve is Resolve for classes whose graph has already been verified.
func (r *Resolver) resolve(ctx context.Context, cls *Class) (any, error) {
	reg, ok := r.registry.Lookup(cls)
	if !ok {
		return nil, errors.Wrapf(ErrNotRegistered, "%s", cls)
	}

	st := r.storeFor(reg.Scope)
	if inst, ok, err := st.get(cls); err != nil {
		return nil, err
	} else if ok {
		return inst, nil
	}
	return r.build(ctx, cls, reg, st)
}

// build constructs cls and caches it in st. Concurrent builds of the same
// class in the same store collapse into one.
func (r *Resolver) build(ctx context.Context, cls *Class, reg Registration, st *store) (any, error) {
	inst, err, _ := st.flight.Do(cls.flightKey(), func() (any, error) {
		// Another caller may have finished the build between our cache miss
		// and joining the flight.
		if inst, ok, err := st.get(cls); err != nil {
			return nil, err
		} else if ok {
			return inst, nil
		}

		args, err := r.resolveDeps(ctx, cls, reg.Deps)
		if err != nil {
			return nil, err
		}

		instance, err := reg.factory(args)
		if err != nil {
			return nil, errors.Wrapf(err, "constructing %s", cls)
		}

		if init, ok := reg.hooks.initializer(instance); ok {
			if err := init.OnInit(ctx); err != nil {
				return nil, errors.Wrapf(err, "initializing %s", cls)
			}
		}

		meta := instanceMeta{class: cls, instance: instance}
		if d, ok := reg.hooks.destroyer(instance); ok {
			meta.onDestroy = d.OnDestroy
		}
		if err := st.put(meta); err != nil {
			return nil, errors.WithMessagef(err, "caching %s", cls)
		}

		r.logger.DebugContext(ctx, "instance constructed", "class", cls.Name(), "scope", reg.Scope.String())
		return instance, nil
	})
	return inst, err
}

// resolveDeps resolves deps and returns them in declaration order, whatever
// order they complete in.
func (r *Resolver) resolveDeps(ctx context.Context, owner *Class, deps []Dep) (Args, error) {
	args := make(Args, len(deps))

	if r.cfg.sequential || len(deps) < 2 {
		for i, dep := range deps {
			v, err := r.resolveDep(ctx, owner, dep)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return args, nil
	}

	var eg errgroup.Group
	for i, dep := range deps {
		eg.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = errors.Errorf("panic resolving dependency %d of %s: %v", i, owner, p)
				}
			}()

			v, err := r.resolveDep(ctx, owner, dep)
			if err != nil {
				return err
			}
			args[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return args, nil
}

func (r *Resolver) resolveDep(ctx context.Context, owner *Class, dep Dep) (any, error) {
	cls := dep.Class()
	v, err := r.resolve(ctx, cls)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolving %s for %s", cls, owner)
	}
	return v, nil
}
