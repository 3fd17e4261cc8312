package grove

import (
	"strconv"
	"sync/atomic"
)

var classSeq atomic.Uint64

// Class is the identity of a declared type. Two classes are the same only if
// they are the same pointer; the name is for humans and error messages.
type Class struct {
	name string
	id   uint64
}

// NewClass returns a fresh class identity. Most callers want the typed
// [NewKey] instead.
func NewClass(name string) *Class {
	return &Class{name: name, id: classSeq.Add(1)}
}

// Name returns the name the class was declared with.
func (c *Class) Name() string { return c.name }

func (c *Class) String() string {
	if c == nil {
		return "<nil class>"
	}
	return c.name
}

// flightKey identifies the class inside a singleflight group.
func (c *Class) flightKey() string {
	return strconv.FormatUint(c.id, 10)
}

// Key is a typed handle to a [Class]. Resolving a Key[T] yields a T.
//
//	var UserRepoKey = grove.NewKey[*UserRepo]("UserRepo")
type Key[T any] struct {
	*Class
}

// NewKey declares a new class identity producing values of type T.
func NewKey[T any](name string) Key[T] {
	return Key[T]{Class: NewClass(name)}
}

// Dep is a dependency reference as stored in a [Registration]: either a
// direct class or a lazy thunk that yields one when invoked.
type Dep struct {
	direct *Class
	thunk  func() *Class
}

// Class returns the referenced class identity, invoking the thunk for lazy
// references.
func (d Dep) Class() *Class {
	if d.thunk != nil {
		return d.thunk()
	}
	return d.direct
}

// IsLazy reports whether the reference is a lazy thunk.
func (d Dep) IsLazy() bool { return d.thunk != nil }

// Ref is the typed form of [Dep] accepted by the fixed-arity Provide
// helpers, so argument position and type are checked by the compiler.
type Ref[T any] struct {
	dep Dep
}

// Dep returns the untyped dependency reference.
func (r Ref[T]) Dep() Dep { return r.dep }

// Of references key directly.
func Of[T any](key Key[T]) Ref[T] {
	return Ref[T]{dep: Dep{direct: key.Class}}
}

// Lazy references the key returned by fn. fn is not called until the
// dependency is resolved, so it may return a key that is only assigned
// later, e.g. by a package that registers after this one.
//
//	grove.Provide1(reg, ReportsKey, grove.Lazy(func() grove.Key[*Mailer] { return mail.Key }), NewReports)
func Lazy[T any](fn func() Key[T]) Ref[T] {
	return Ref[T]{dep: Dep{thunk: func() *Class { return fn().Class }}}
}
