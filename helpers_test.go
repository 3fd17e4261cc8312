package grove

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test types, keys and constructors used across test files.

// mustOK calls t.Fatal if a registration fails.
func mustOK(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

type testLogger struct{ Prefix string }
type testConfig struct{ DSN string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testUserRepo struct {
	DB     *testDatabase
	Logger *testLogger
}

type testUserService struct {
	Repo   *testUserRepo
	Logger *testLogger
}

type testService interface {
	Name() string
}

var (
	loggerKey      = NewKey[*testLogger]("Logger")
	configKey      = NewKey[*testConfig]("Config")
	databaseKey    = NewKey[*testDatabase]("Database")
	userRepoKey    = NewKey[*testUserRepo]("UserRepo")
	userServiceKey = NewKey[*testUserService]("UserService")
)

func newTestLogger() (*testLogger, error) { return &testLogger{Prefix: "app"}, nil }
func newTestConfig() (*testConfig, error) { return &testConfig{DSN: "postgres://localhost"}, nil }

func newTestDatabase(cfg *testConfig, log *testLogger) (*testDatabase, error) {
	return &testDatabase{Config: cfg, Logger: log}, nil
}

func newTestUserRepo(db *testDatabase, log *testLogger) (*testUserRepo, error) {
	return &testUserRepo{DB: db, Logger: log}, nil
}

func newTestUserService(repo *testUserRepo, log *testLogger) (*testUserService, error) {
	return &testUserService{Repo: repo, Logger: log}, nil
}

// registerLayered declares Logger, Config and Database as singletons and
// UserRepo and UserService with the given scope.
func registerLayered(t *testing.T, reg *Registry, scope Scope) {
	t.Helper()
	mustOK(t, Provide(reg, loggerKey, newTestLogger))
	mustOK(t, Provide(reg, configKey, newTestConfig))
	mustOK(t, Provide2(reg, databaseKey, Of(configKey), Of(loggerKey), newTestDatabase))
	mustOK(t, Provide2(reg, userRepoKey, Of(databaseKey), Of(loggerKey), newTestUserRepo, WithScope(scope)))
	mustOK(t, Provide2(reg, userServiceKey, Of(userRepoKey), Of(loggerKey), newTestUserService,
		WithScope(scope), WithToken("users")))
}

// recorder collects lifecycle events from concurrent hooks.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// hooked implements both lifecycle hooks and records them.
type hooked struct {
	name       string
	rec        *recorder
	deps       []*hooked
	initErr    error
	destroyErr error
	onInit     func(ctx context.Context) error
}

func (h *hooked) Name() string { return h.name }

func (h *hooked) OnInit(ctx context.Context) error {
	h.rec.add("init:" + h.name)
	if h.onInit != nil {
		return h.onInit(ctx)
	}
	return h.initErr
}

func (h *hooked) OnDestroy(ctx context.Context) error {
	h.rec.add("destroy:" + h.name)
	return h.destroyErr
}

// counter counts constructor calls.
type counter struct{ n atomic.Int32 }

func (c *counter) inc()       { c.n.Add(1) }
func (c *counter) get() int32 { return c.n.Load() }

var errBoom = errors.New("boom")
