// Package scopehttp gives every HTTP request its own grove request scope.
//
// A server keeps one root [grove.Resolver] for its lifetime. [Middleware]
// opens a session of the root for each request and ends its request scope
// once the handler is done, so request-scoped instances are torn down per
// request while singletons live until the root is shut down.
package scopehttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ARTM2000/grove"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

// WithResolver returns a copy of ctx carrying r.
func WithResolver(ctx context.Context, r *grove.Resolver) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the request's resolver session stored by
// [Middleware].
func FromContext(ctx context.Context) (*grove.Resolver, bool) {
	r, ok := ctx.Value(ctxKey{}).(*grove.Resolver)
	return r, ok
}

// Middleware opens a session of root for each request and ends its request
// scope after the handler returns or panics. Panics are re-raised for an
// outer recoverer.
func Middleware(root *grove.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			session := root.NewSession()
			ctx := req.Context()
			defer func() {
				if err := session.EndRequestScope(context.WithoutCancel(ctx)); err != nil {
					session.Logger().ErrorContext(ctx, "ending request scope",
						"error", err, "request_id", middleware.GetReqID(ctx))
				}
			}()

			next.ServeHTTP(w, req.WithContext(WithResolver(ctx, session)))
		})
	}
}

// Handle adapts fn to an HTTP handler. Behind [Middleware], fn runs in the
// request's session through [grove.RunWith] and the middleware ends the
// scope. Otherwise fn gets a fresh session of root through
// [grove.RunSession]. The result is written as JSON with the status of the
// error, or 200.
func Handle[T any](root *grove.Resolver, fn func(req *http.Request, r *grove.Resolver) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		unit := func(ctx context.Context, r *grove.Resolver) (T, error) {
			return fn(req.WithContext(ctx), r)
		}

		var res grove.Result[T]
		if session, ok := FromContext(req.Context()); ok {
			res = grove.RunWith(req.Context(), session, unit)
		} else {
			res = grove.RunSession(req.Context(), root, unit)
		}

		status := http.StatusOK
		if res.Error != nil {
			status = res.Error.Status
		}
		writeJSON(w, status, res)
	}
}

// NewRouter returns a chi router with request ids, real client addresses,
// panic recovery and per-request scopes installed.
func NewRouter(root *grove.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Middleware(root))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	// WriteHeader panics outside 1xx-9xx.
	if status < 100 || status > 999 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
