package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/utils/async"
	"github.com/relaymill/towncrier/pkg/utils/errutil"
	"github.com/relaymill/towncrier/pkg/utils/logging"
)

// Trigger starts one sync cycle on demand
type Trigger interface {
	RunOnce(ctx context.Context) error
}

type Server struct {
	router  *chi.Mux
	trigger Trigger
	repo    interfaces.Repository
}

type Options func(*Server)

// WithRepository exposes the stored checkpoint over the API
func WithRepository(repo interfaces.Repository) Options {
	return func(s *Server) {
		s.repo = repo
	}
}

func New(trigger Trigger, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		trigger: trigger,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sync", s.syncHandler)
		if s.repo != nil {
			r.Get("/checkpoint", s.checkpointHandler)
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// syncHandler kicks off a cycle in the background and returns immediately.
// The cycle's outcome shows up in the logs, not the response.
func (s *Server) syncHandler(w http.ResponseWriter, r *http.Request) {
	async.Dispatch(r.Context(), func(ctx context.Context) error {
		return s.trigger.RunOnce(ctx)
	})

	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) checkpointHandler(w http.ResponseWriter, r *http.Request) {
	cp, err := s.repo.Checkpoint().Get(r.Context())
	if err != nil {
		if errors.Is(err, interfaces.ErrCheckpointNotFound) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to load checkpoint"), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, cp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
