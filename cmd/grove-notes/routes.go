package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ARTM2000/grove"
	"github.com/ARTM2000/grove/apperr"
	"github.com/ARTM2000/grove/internal/notes"
	"github.com/ARTM2000/grove/scopehttp"
	"github.com/go-chi/chi/v5"
)

type createNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func newHandler(root *grove.Resolver) http.Handler {
	r := scopehttp.NewRouter(root)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Post("/", scopehttp.Handle(root, func(req *http.Request, res *grove.Resolver) (*notes.Note, error) {
			var body createNoteRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, apperr.Validation("invalid request body", apperr.WithCause(err))
			}

			svc, err := grove.Inject[notes.Service](req.Context(), res, notes.ServiceToken)
			if err != nil {
				return nil, err
			}
			return svc.Create(req.Context(), body.Title, body.Body)
		}))

		r.Get("/", scopehttp.Handle(root, func(req *http.Request, res *grove.Resolver) ([]notes.Note, error) {
			svc, err := grove.Resolve(req.Context(), res, notes.ServiceKey)
			if err != nil {
				return nil, err
			}
			return svc.List(req.Context())
		}))

		r.Get("/{id}", scopehttp.Handle(root, func(req *http.Request, res *grove.Resolver) (*notes.Note, error) {
			id, err := parseID(chi.URLParam(req, "id"))
			if err != nil {
				return nil, err
			}

			svc, err := grove.Resolve(req.Context(), res, notes.ServiceKey)
			if err != nil {
				return nil, err
			}
			return svc.Get(req.Context(), id)
		}))
	})

	return r
}

// parseID parses a note id: a positive integer that fits in a uint.
func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, apperr.Validation("id must be a positive integer", apperr.WithCause(err))
	}
	return uint(id), nil
}
