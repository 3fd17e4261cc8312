package grove

// Scope controls how long a resolved instance is shared.
type Scope int

const (
	// Singleton is the default scope. The instance is built on first
	// resolution and shared until [Resolver.Shutdown].
	Singleton Scope = iota

	// Request means one instance per request session. The instance is
	// shared until [Resolver.EndRequestScope].
	Request
)

// String returns the human-readable name of the scope.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Request:
		return "request"
	default:
		return "unknown"
	}
}
