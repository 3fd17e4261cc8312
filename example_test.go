package grove_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/ARTM2000/grove"
	"github.com/ARTM2000/grove/apperr"
)

// Types used in examples only.
type Logger struct{ Prefix string }
type Config struct{ DSN string }
type Database struct {
	Config *Config
	Logger *Logger
}

func (db *Database) OnInit(context.Context) error {
	fmt.Println("connect", db.Config.DSN)
	return nil
}

func (db *Database) OnDestroy(context.Context) error {
	fmt.Println("close", db.Config.DSN)
	return nil
}

type Greeter interface {
	Greet() string
}
type englishGreeter struct{}

func (g *englishGreeter) Greet() string { return "hello" }

var (
	LoggerKey   = grove.NewKey[*Logger]("Logger")
	ConfigKey   = grove.NewKey[*Config]("Config")
	DatabaseKey = grove.NewKey[*Database]("Database")
	GreeterKey  = grove.NewKey[Greeter]("Greeter")
)

func ExampleNew() {
	reg := grove.NewRegistry()
	_ = grove.Provide(reg, LoggerKey, func() (*Logger, error) { return &Logger{Prefix: "app"}, nil })

	r := grove.New(reg)
	logger, _ := grove.Resolve(context.Background(), r, LoggerKey)
	fmt.Println(logger.Prefix)
	// Output: app
}

func ExampleWithScope() {
	ctx := context.Background()
	reg := grove.NewRegistry()
	_ = grove.Provide(reg, LoggerKey,
		func() (*Logger, error) { return &Logger{Prefix: "app"}, nil },
		grove.WithScope(grove.Request),
	)

	r := grove.New(reg)
	l1, _ := grove.Resolve(ctx, r, LoggerKey)
	l2, _ := grove.Resolve(ctx, r, LoggerKey)
	_ = r.EndRequestScope(ctx)
	l3, _ := grove.Resolve(ctx, r, LoggerKey)
	fmt.Println(l1 == l2, l1 == l3)
	// Output: true false
}

func ExampleResolve() {
	ctx := context.Background()
	reg := grove.NewRegistry()
	_ = grove.Value(reg, ConfigKey, &Config{DSN: "postgres://localhost"})
	_ = grove.Provide(reg, LoggerKey, func() (*Logger, error) { return &Logger{Prefix: "app"}, nil })
	_ = grove.Provide2(reg, DatabaseKey, grove.Of(ConfigKey), grove.Of(LoggerKey),
		func(cfg *Config, log *Logger) (*Database, error) {
			return &Database{Config: cfg, Logger: log}, nil
		})

	r := grove.New(reg)
	db, err := grove.Resolve(ctx, r, DatabaseKey)
	if err != nil {
		panic(err)
	}
	fmt.Println(db.Logger.Prefix)
	_ = r.Shutdown(ctx)
	// Output:
	// connect postgres://localhost
	// app
	// close postgres://localhost
}

func ExampleInject() {
	reg := grove.NewRegistry()
	_ = grove.Provide(reg, GreeterKey,
		func() (Greeter, error) { return &englishGreeter{}, nil },
		grove.WithToken("greeter"),
	)

	g, _ := grove.Inject[Greeter](context.Background(), grove.New(reg), "greeter")
	fmt.Println(g.Greet())
	// Output: hello
}

func ExampleRun() {
	reg := grove.NewRegistry()

	res := grove.Run(context.Background(), reg, func(ctx context.Context, r *grove.Resolver) (string, error) {
		return "", apperr.Validation("bad input")
	})
	fmt.Println(res.Error.Message, res.Error.Code, res.Error.Status)

	res = grove.Run(context.Background(), reg, func(ctx context.Context, r *grove.Resolver) (string, error) {
		return "", errors.New("disk on fire")
	})
	fmt.Println(res.Error.Message, res.Error.Code, res.Error.Status)
	// Output:
	// bad input VALIDATION_ERROR 422
	// Internal Server Error UNKNOWN 500
}
