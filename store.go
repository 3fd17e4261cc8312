package grove

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// instanceMeta is a cached instance and its bound teardown hook.
type instanceMeta struct {
	class     *Class
	instance  any
	onDestroy func(ctx context.Context) error
}

// store is one scope map. Entries are only written after the instance's init
// hook has returned, so a cached entry is always fully initialized. The
// singleflight group stands in for the entry while it is under
// construction: concurrent resolvers of the same class share one build.
type store struct {
	scope Scope

	mu      sync.Mutex
	entries map[*Class]instanceMeta
	// order is the order in which entries completed. A class always
	// completes after its dependencies, so teardown walks it backwards.
	order  []*Class
	closed bool

	flight singleflight.Group
}

func newStore(scope Scope) *store {
	return &store{
		scope:   scope,
		entries: make(map[*Class]instanceMeta),
	}
}

func (s *store) get(cls *Class) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, ErrAlreadyShutdown
	}
	meta, ok := s.entries[cls]
	return meta.instance, ok, nil
}

func (s *store) put(meta instanceMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrAlreadyShutdown
	}
	if _, exists := s.entries[meta.class]; exists {
		return errors.Errorf("%s already cached in %s scope", meta.class, s.scope)
	}
	s.entries[meta.class] = meta
	s.order = append(s.order, meta.class)
	return nil
}

func (s *store) has(cls *Class) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[cls]
	return ok
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// drain empties the store and returns its entries, most recent first.
func (s *store) drain() []instanceMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas := make([]instanceMeta, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		metas = append(metas, s.entries[s.order[i]])
	}
	s.entries = make(map[*Class]instanceMeta)
	s.order = nil
	return metas
}

// teardown runs every teardown hook one at a time, dependents before their
// dependencies, and leaves the store empty.
func (s *store) teardown(ctx context.Context, logger *slog.Logger) error {
	return s.destroy(ctx, logger, s.drain())
}

// close marks the store shut down and tears it down. Only the first call
// does any work.
func (s *store) close(ctx context.Context, logger *slog.Logger) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAlreadyShutdown
	}
	s.closed = true
	s.mu.Unlock()

	return s.destroy(ctx, logger, s.drain())
}

// destroy runs the hooks of metas in order. A failing hook does not stop the
// others.
func (s *store) destroy(ctx context.Context, logger *slog.Logger, metas []instanceMeta) error {
	var errs []error
	for _, meta := range metas {
		if meta.onDestroy == nil {
			continue
		}
		if err := meta.onDestroy(ctx); err != nil {
			logger.ErrorContext(ctx, "teardown failed", "class", meta.class.Name(), "scope", s.scope.String(), "error", err)
			errs = append(errs, errors.Wrapf(err, "destroying %s", meta.class))
			continue
		}
		logger.DebugContext(ctx, "instance destroyed", "class", meta.class.Name(), "scope", s.scope.String())
	}
	return stderrors.Join(errs...)
}
