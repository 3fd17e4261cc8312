// Package grove provides a runtime dependency injection container with
// singleton and request scopes.
//
// Classes are declared against a [Registry] with an explicit, ordered list
// of dependencies and a typed factory. A [Resolver] builds them on demand,
// caches each instance in its scope, runs [Initializer] hooks before an
// instance becomes visible and [Destroyer] hooks when its scope is torn
// down.
//
// # Quick Start
//
//	var (
//		ConfigKey = grove.NewKey[*Config]("Config")
//		DBKey     = grove.NewKey[*DB]("DB")
//	)
//
//	reg := grove.NewRegistry()
//	grove.Provide(reg, ConfigKey, LoadConfig)
//	grove.Provide1(reg, DBKey, grove.Of(ConfigKey), OpenDB)
//
//	r := grove.New(reg)
//	db, err := grove.Resolve(ctx, r, DBKey)
//
// # Scopes
//
// [Singleton] (default): one instance per resolver family, torn down by
// [Resolver.Shutdown].
//
// [Request]: one instance per session, torn down by
// [Resolver.EndRequestScope].
//
//	grove.Provide1(reg, TxKey, grove.Of(DBKey), BeginTx, grove.WithScope(grove.Request))
//
// # Tokens
//
// A class registered with [WithToken] can be resolved without importing
// its key:
//
//	svc, err := grove.Inject[NoteService](ctx, r, "notes")
//
// # Units of work
//
// [Run] and [RunSession] run a function against a request session and
// always end the request scope afterwards, turning failures into a
// [Result] that carries either data or a structured error.
package grove
