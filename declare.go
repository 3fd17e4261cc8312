package grove

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Args holds the resolved dependencies of a class, in declaration order.
type Args []any

// Arg returns args[i] as an A.
func Arg[A any](args Args, i int) (A, error) {
	var zero A
	if i < 0 || i >= len(args) {
		return zero, errors.Wrapf(ErrArgumentType, "argument %d out of range (%d arguments)", i, len(args))
	}
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(A)
	if !ok {
		return zero, errors.Wrapf(ErrArgumentType, "argument %d: have %T, want %s", i, args[i], reflect.TypeFor[A]())
	}
	return v, nil
}

// Provide registers a class without dependencies.
//
//	grove.Provide(reg, ConfigKey, LoadConfig)
func Provide[T any](reg *Registry, key Key[T], fn func() (T, error), opts ...Option) error {
	return declare(reg, key, nil, func(Args) (T, error) {
		return fn()
	}, opts)
}

// Provide1 registers a class built from one dependency.
func Provide1[T, A any](reg *Registry, key Key[T], a Ref[A], fn func(A) (T, error), opts ...Option) error {
	return declare(reg, key, []Dep{a.dep}, func(args Args) (T, error) {
		var zero T
		av, err := Arg[A](args, 0)
		if err != nil {
			return zero, err
		}
		return fn(av)
	}, opts)
}

// Provide2 registers a class built from two dependencies.
func Provide2[T, A, B any](reg *Registry, key Key[T], a Ref[A], b Ref[B], fn func(A, B) (T, error), opts ...Option) error {
	return declare(reg, key, []Dep{a.dep, b.dep}, func(args Args) (T, error) {
		var zero T
		av, err := Arg[A](args, 0)
		if err != nil {
			return zero, err
		}
		bv, err := Arg[B](args, 1)
		if err != nil {
			return zero, err
		}
		return fn(av, bv)
	}, opts)
}

// Provide3 registers a class built from three dependencies.
func Provide3[T, A, B, C any](reg *Registry, key Key[T], a Ref[A], b Ref[B], c Ref[C], fn func(A, B, C) (T, error), opts ...Option) error {
	return declare(reg, key, []Dep{a.dep, b.dep, c.dep}, func(args Args) (T, error) {
		var zero T
		av, err := Arg[A](args, 0)
		if err != nil {
			return zero, err
		}
		bv, err := Arg[B](args, 1)
		if err != nil {
			return zero, err
		}
		cv, err := Arg[C](args, 2)
		if err != nil {
			return zero, err
		}
		return fn(av, bv, cv)
	}, opts)
}

// Provide4 registers a class built from four dependencies.
func Provide4[T, A, B, C, D any](reg *Registry, key Key[T], a Ref[A], b Ref[B], c Ref[C], d Ref[D], fn func(A, B, C, D) (T, error), opts ...Option) error {
	return declare(reg, key, []Dep{a.dep, b.dep, c.dep, d.dep}, func(args Args) (T, error) {
		var zero T
		av, err := Arg[A](args, 0)
		if err != nil {
			return zero, err
		}
		bv, err := Arg[B](args, 1)
		if err != nil {
			return zero, err
		}
		cv, err := Arg[C](args, 2)
		if err != nil {
			return zero, err
		}
		dv, err := Arg[D](args, 3)
		if err != nil {
			return zero, err
		}
		return fn(av, bv, cv, dv)
	}, opts)
}

// ProvideN registers a class with any number of dependencies. fn receives
// them in the order of deps; use [Arg] to take them apart.
func ProvideN[T any](reg *Registry, key Key[T], deps []Dep, fn func(Args) (T, error), opts ...Option) error {
	return declare(reg, key, deps, fn, opts)
}

// Value registers an already built value as a singleton.
func Value[T any](reg *Registry, key Key[T], v T, opts ...Option) error {
	opts = append(opts, WithScope(Singleton))
	return declare(reg, key, nil, func(Args) (T, error) {
		return v, nil
	}, opts)
}

// Refs converts typed references to the untyped form taken by [ProvideN].
func Refs[T any](refs ...Ref[T]) []Dep {
	return lo.Map(refs, func(r Ref[T], _ int) Dep { return r.dep })
}

func declare[T any](reg *Registry, key Key[T], deps []Dep, build func(Args) (T, error), opts []Option) error {
	if reg == nil {
		return errors.New("registry cannot be nil")
	}
	if key.Class == nil {
		return errors.New("key cannot be empty; use NewKey")
	}

	d := declaration{scope: Singleton}
	for _, opt := range opts {
		opt(&d)
	}

	if d.scope != Singleton && d.scope != Request {
		return errors.Errorf("class %s: invalid scope %s", key, d.scope)
	}
	for i, dep := range deps {
		if dep.direct == nil && dep.thunk == nil {
			return errors.Errorf("class %s: dependency %d is empty", key, i)
		}
	}

	return reg.Register(key.Class, Registration{
		Deps:  deps,
		Scope: d.scope,
		factory: func(args []any) (any, error) {
			return build(args)
		},
		hooks: capabilitiesOf[T](),
	}, d.token)
}
