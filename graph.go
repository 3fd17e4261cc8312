package grove

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// verifiedSet remembers classes whose dependency graph is known to be
// complete and acyclic. The registry is append-only, so the answer never
// changes for a class.
type verifiedSet struct {
	mu      sync.RWMutex
	classes map[*Class]struct{}
}

func newVerifiedSet() *verifiedSet {
	return &verifiedSet{classes: make(map[*Class]struct{})}
}

func (v *verifiedSet) has(cls *Class) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.classes[cls]
	return ok
}

func (v *verifiedSet) add(states map[*Class]visitState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for cls, st := range states {
		if st == visited {
			v.classes[cls] = struct{}{}
		}
	}
}

// verify checks, before anything is constructed, that every class reachable
// from cls is registered and that no chain of dependencies leads back to a
// class already on the chain. Lazy references are followed too: a thunk
// defers naming a class, it does not defer building it.
func (r *Resolver) verify(cls *Class) error {
	if r.verified.has(cls) {
		return nil
	}

	states := make(map[*Class]visitState)
	if err := r.walk(cls, states, nil); err != nil {
		return err
	}
	r.verified.add(states)
	return nil
}

// walk is a depth-first search using a local state map and stack.
func (r *Resolver) walk(cls *Class, states map[*Class]visitState, stack []*Class) error {
	switch states[cls] {
	case visiting:
		return circularError(cls, stack)
	case visited:
		return nil
	}

	if r.verified.has(cls) {
		states[cls] = visited
		return nil
	}

	reg, ok := r.registry.Lookup(cls)
	if !ok {
		if len(stack) > 0 {
			return errors.Wrapf(ErrNotRegistered, "%s (required by %s)", cls, stack[len(stack)-1])
		}
		return errors.Wrapf(ErrNotRegistered, "%s", cls)
	}

	states[cls] = visiting
	stack = append(stack, cls)

	for _, dep := range reg.Deps {
		if err := r.walk(dep.Class(), states, stack); err != nil {
			return err
		}
	}

	states[cls] = visited
	return nil
}

func circularError(cls *Class, stack []*Class) error {
	chain := make([]string, 0, len(stack)+1)
	for _, s := range stack {
		chain = append(chain, s.String())
	}
	chain = append(chain, cls.String())

	return errors.Wrap(ErrCircularDependency, strings.Join(chain, " -> "))
}
