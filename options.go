package grove

import "log/slog"

// declaration holds the registration options for a single class.
type declaration struct {
	scope Scope
	token string
}

// Option configures a class during registration.
type Option func(*declaration)

// WithScope sets the [Scope] of the class. The default is [Singleton].
func WithScope(s Scope) Option {
	return func(d *declaration) {
		d.scope = s
	}
}

// WithToken makes the class resolvable by a string token through
// [Resolver.GetInjection] and [Inject].
func WithToken(token string) Option {
	return func(d *declaration) {
		d.token = token
	}
}

// resolverConfig holds the options of a [Resolver].
type resolverConfig struct {
	logger     *slog.Logger
	sequential bool
}

// ResolverOption configures a [Resolver].
type ResolverOption func(*resolverConfig)

// WithLogger sets the logger used for construction and teardown events. The
// default discards everything.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(c *resolverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSequentialDeps resolves the dependencies of a class one after the other
// in declaration order instead of concurrently.
func WithSequentialDeps() ResolverOption {
	return func(c *resolverConfig) {
		c.sequential = true
	}
}
