package grove

import (
	"context"
	"testing"
)

func benchRegistry(b *testing.B, scope Scope) *Registry {
	b.Helper()
	reg := NewRegistry()
	if err := Provide(reg, loggerKey, newTestLogger); err != nil {
		b.Fatal(err)
	}
	if err := Provide(reg, configKey, newTestConfig); err != nil {
		b.Fatal(err)
	}
	if err := Provide2(reg, databaseKey, Of(configKey), Of(loggerKey), newTestDatabase, WithScope(scope)); err != nil {
		b.Fatal(err)
	}
	return reg
}

func BenchmarkRegister(b *testing.B) {
	for b.Loop() {
		reg := NewRegistry()
		Provide(reg, loggerKey, newTestLogger)
		Provide(reg, configKey, newTestConfig)
		Provide2(reg, databaseKey, Of(configKey), Of(loggerKey), newTestDatabase)
	}
}

func BenchmarkResolve_Singleton(b *testing.B) {
	ctx := context.Background()
	r := New(benchRegistry(b, Singleton))
	Resolve(ctx, r, databaseKey)

	for b.Loop() {
		Resolve(ctx, r, databaseKey)
	}
}

func BenchmarkResolve_RequestSession(b *testing.B) {
	ctx := context.Background()
	root := New(benchRegistry(b, Request))

	for b.Loop() {
		s := root.NewSession()
		Resolve(ctx, s, databaseKey)
		s.EndRequestScope(ctx)
	}
}

func BenchmarkRun(b *testing.B) {
	ctx := context.Background()
	reg := benchRegistry(b, Request)

	for b.Loop() {
		Run(ctx, reg, func(ctx context.Context, r *Resolver) (*testDatabase, error) {
			return Resolve(ctx, r, databaseKey)
		})
	}
}
