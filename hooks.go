package grove

import (
	"context"
	"reflect"
)

// Initializer is implemented by types that need work done after
// construction and before anyone else can see the instance. Resolution
// waits for OnInit; an error aborts it and nothing is cached.
type Initializer interface {
	OnInit(ctx context.Context) error
}

// Destroyer is implemented by types that hold resources. OnDestroy runs
// once, when the scope the instance lives in is torn down.
type Destroyer interface {
	OnDestroy(ctx context.Context) error
}

var (
	initializerType = reflect.TypeFor[Initializer]()
	destroyerType   = reflect.TypeFor[Destroyer]()
)

// capabilities records which hooks a registered type has. It is decided from
// the static type when possible; interface types are only known per
// instance.
type capabilities struct {
	dynamic bool
	init    bool
	destroy bool
}

func capabilitiesOf[T any]() capabilities {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface {
		return capabilities{dynamic: true}
	}
	return capabilities{
		init:    t.Implements(initializerType),
		destroy: t.Implements(destroyerType),
	}
}

func (c capabilities) initializer(instance any) (Initializer, bool) {
	if !c.dynamic && !c.init {
		return nil, false
	}
	i, ok := instance.(Initializer)
	return i, ok
}

func (c capabilities) destroyer(instance any) (Destroyer, bool) {
	if !c.dynamic && !c.destroy {
		return nil, false
	}
	d, ok := instance.(Destroyer)
	return d, ok
}
