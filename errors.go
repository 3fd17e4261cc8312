package grove

import "errors"

var (
	// ErrNotRegistered is returned when a class has no registration. Nothing
	// is constructed when this error is returned.
	ErrNotRegistered = errors.New("class not registered")

	// ErrUnknownToken is returned by GetInjection when no class is registered
	// under the token.
	ErrUnknownToken = errors.New("no class for token")

	// ErrCircularDependency is returned when the eager dependency graph of a
	// class contains a cycle. The error message includes the full chain.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrDuplicateRegistration is returned when a class or token is
	// registered more than once.
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrAlreadyShutdown is returned by Shutdown after the first call, and by
	// resolution of singleton classes once the singletons are torn down.
	ErrAlreadyShutdown = errors.New("resolver already shut down")

	// ErrArgumentType is returned when a factory argument does not have the
	// type the factory expects.
	ErrArgumentType = errors.New("argument type mismatch")
)
