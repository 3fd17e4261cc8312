package grove

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Registration is what the registry knows about a class: its dependencies in
// constructor order, its scope and how to build it. It is immutable once
// written.
type Registration struct {
	Deps  []Dep
	Scope Scope

	factory func(args []any) (any, error)
	hooks   capabilities
}

// Registry maps classes to their registrations and tokens to classes. It is
// filled during process initialization and is never pruned. Pass it to
// [New] to resolve from it.
type Registry struct {
	mu sync.RWMutex

	regs   map[*Class]Registration
	tokens map[string]*Class
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		regs:   make(map[*Class]Registration),
		tokens: make(map[string]*Class),
	}
}

// Register writes reg for cls and, when token is not empty, maps token to
// cls. Registrations are append-only: a class or token can be registered
// once.
func (r *Registry) Register(cls *Class, reg Registration, token string) error {
	if cls == nil {
		return errors.New("class cannot be nil")
	}
	if reg.factory == nil {
		return errors.Errorf("class %s: factory cannot be nil", cls)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[cls]; exists {
		return errors.Wrapf(ErrDuplicateRegistration, "class %s", cls)
	}
	if token != "" {
		if other, exists := r.tokens[token]; exists {
			return errors.Wrapf(ErrDuplicateRegistration, "token %q already maps to %s", token, other)
		}
		r.tokens[token] = cls
	}
	r.regs[cls] = reg
	return nil
}

// Lookup returns the registration for cls.
func (r *Registry) Lookup(cls *Class) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[cls]
	return reg, ok
}

// LookupToken returns the class registered under token.
func (r *Registry) LookupToken(token string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cls, ok := r.tokens[token]
	return cls, ok
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regs)
}

// Tokens returns every registered token, sorted.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tokens := lo.Keys(r.tokens)
	sort.Strings(tokens)
	return tokens
}

// Classes returns every registered class, sorted by name.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := lo.Keys(r.regs)
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].name == classes[j].name {
			return classes[i].id < classes[j].id
		}
		return classes[i].name < classes[j].name
	})
	return classes
}
