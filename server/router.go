package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kirves-server/server/engine"
	"kirves-server/server/service"
	"kirves-server/server/tx"
)

// IdentityProvider resolves the opaque caller identity from a request.
// The production deployment sits behind a gateway that verifies tokens
// and forwards the identity in a header.
type IdentityProvider interface {
	Resolve(r *http.Request) (string, error)
}

var errNoIdentity = errors.New("no identity in request")

// HeaderIdentity reads the identity from a trusted header.
type HeaderIdentity struct{ Header string }

func (h HeaderIdentity) Resolve(r *http.Request) (string, error) {
	email := strings.TrimSpace(r.Header.Get(h.Header))
	if email == "" {
		return "", errNoIdentity
	}
	return email, nil
}

func Router(svc *service.Service, ident IdentityProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	r.Route("/api/kirves", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			if _, ok := identity(w, req, ident); !ok {
				return
			}
			games, err := svc.ActiveGames(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, games)
		})

		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			email, ok := identity(w, req, ident)
			if !ok {
				return
			}
			g, err := svc.Init(req.Context(), email)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, g.Out(email))
		})

		r.Get("/{gameID}", func(w http.ResponseWriter, req *http.Request) {
			email, ok := identity(w, req, ident)
			if !ok {
				return
			}
			out, err := svc.View(req.Context(), chi.URLParam(req, "gameID"), email)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, out)
		})

		r.Post("/{gameID}/join", func(w http.ResponseWriter, req *http.Request) {
			email, ok := identity(w, req, ident)
			if !ok {
				return
			}
			g, err := svc.Join(req.Context(), chi.URLParam(req, "gameID"), email)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, g.Out(email))
		})

		r.Post("/{gameID}/action", func(w http.ResponseWriter, req *http.Request) {
			email, ok := identity(w, req, ident)
			if !ok {
				return
			}
			var in service.ActionIn
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			g, err := svc.Action(req.Context(), chi.URLParam(req, "gameID"), in, email)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, g.Out(email))
		})

		r.Get("/{gameID}/log/{handID}", func(w http.ResponseWriter, req *http.Request) {
			if _, ok := identity(w, req, ident); !ok {
				return
			}
			handID, err := strconv.ParseInt(chi.URLParam(req, "handID"), 10, 64)
			if err != nil {
				http.Error(w, "invalid hand id", http.StatusBadRequest)
				return
			}
			l, err := svc.ActionLogFor(req.Context(), chi.URLParam(req, "gameID"), handID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, l)
		})

		r.Delete("/{gameID}", func(w http.ResponseWriter, req *http.Request) {
			email, ok := identity(w, req, ident)
			if !ok {
				return
			}
			if err := svc.Inactivate(req.Context(), chi.URLParam(req, "gameID"), email); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, map[string]any{"ok": true})
		})
	})

	return r
}

func identity(w http.ResponseWriter, r *http.Request, ident IdentityProvider) (string, bool) {
	email, err := ident.Resolve(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return email, true
}

// writeError maps the error taxonomy onto HTTP statuses: rule and
// parameter violations are the caller's problem, contention means
// retry, an unreachable state is ours.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrLogNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, tx.ErrTxInProgress), errors.Is(err, tx.ErrTxTimeout):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrActionNotAvailable),
		errors.Is(err, engine.ErrInvalidIndex),
		errors.Is(err, engine.ErrCardNotFound),
		errors.Is(err, engine.ErrDeckExhausted),
		errors.Is(err, engine.ErrGameClosed),
		errors.Is(err, engine.ErrAlreadyJoined),
		errors.Is(err, engine.ErrNotPlayer),
		errors.Is(err, service.ErrBadAction):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
