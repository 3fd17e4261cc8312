package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ARTM2000/grove"
	"github.com/ARTM2000/grove/internal/config"
	"github.com/ARTM2000/grove/internal/logx"
	"github.com/ARTM2000/grove/internal/notes"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newCmd() *cobra.Command {
	params := &struct {
		EnvFiles []string
	}{}

	cmd := &cobra.Command{
		Use:          "grove-notes",
		Short:        "Notes service wired with grove",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSliceVar(&params.EnvFiles, "env-file", nil, "Env files to load (default .env)")

	cmd.AddCommand(
		newServeCmd(func() *config.Config { return config.Load(params.EnvFiles...) }),
		newGraphCmd(func() *config.Config { return config.Load(params.EnvFiles...) }),
	)
	return cmd
}

// bootstrap declares the notes graph and returns its root resolver.
func bootstrap(cfg *config.Config, logger *logx.Logger) (*grove.Resolver, error) {
	reg := grove.NewRegistry()
	if err := notes.Register(reg, &notes.Settings{DBPath: cfg.DBPath}, logger); err != nil {
		return nil, errors.Wrap(err, "failed to register notes")
	}

	opts := []grove.ResolverOption{grove.WithLogger(logger)}
	if cfg.SequentialDeps {
		opts = append(opts, grove.WithSequentialDeps())
	}
	return grove.New(reg, opts...), nil
}

func newServeCmd(load func() *config.Config) *cobra.Command {
	params := &struct {
		Addr string
	}{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := load()
			if params.Addr != "" {
				cfg.Addr = params.Addr
			}
			logger := logx.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogHandler)

			root, err := bootstrap(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
				defer cancel()
				if err := root.Shutdown(shutdownCtx); err != nil {
					logger.Error("failed to shut down singletons", "error", err)
				}
			}()

			// Open the database before accepting traffic so a bad DB_PATH
			// fails the command instead of the first request.
			if _, err := grove.Resolve(ctx, root, notes.DBKey); err != nil {
				return err
			}

			server := &http.Server{
				Addr:    cfg.Addr,
				Handler: newHandler(root),
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("failed to shutdown server", "error", err)
				}
			}()

			logger.Info("server started", "addr", cfg.Addr)
			defer logger.Info("server stopped")

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "failed to listen on %s", cfg.Addr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.Addr, "addr", "a", "", "Address to listen on (overrides APP_ADDR)")
	return cmd
}

func newGraphCmd(load func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the declared classes and tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			root, err := bootstrap(cfg, logx.New(io.Discard, cfg.LogLevel, cfg.LogHandler))
			if err != nil {
				return err
			}
			return printGraph(cmd.OutOrStdout(), root.Registry())
		},
	}
}

func printGraph(w io.Writer, reg *grove.Registry) error {
	tokens := make(map[string]string)
	for _, token := range reg.Tokens() {
		cls, _ := reg.LookupToken(token)
		tokens[cls.Name()] = token
	}

	for _, cls := range reg.Classes() {
		r, _ := reg.Lookup(cls)
		deps := lo.Map(r.Deps, func(d grove.Dep, _ int) string {
			if d.IsLazy() {
				return "lazy " + d.Class().Name()
			}
			return d.Class().Name()
		})

		line := fmt.Sprintf("%-20s %-9s", cls.Name(), r.Scope)
		if len(deps) > 0 {
			line += " <- " + strings.Join(deps, ", ")
		}
		if token, ok := tokens[cls.Name()]; ok {
			line += fmt.Sprintf(" [token %q]", token)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
