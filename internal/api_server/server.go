package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const gracefulShutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	listener net.Listener
	handler  *handlers.Handler
}

func New(cfg *config.Config, listener net.Listener, handler *handlers.Handler) *Server {
	return &Server{
		cfg:      cfg,
		listener: listener,
		handler:  handler,
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := http.Server{Handler: Routes(s.handler)}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
	}()

	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Routes builds the chi router for the administration and invocation
// surfaces. Exported so tests can serve the same routing in-process.
func Routes(h *handlers.Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1alpha1", func(r chi.Router) {
		r.Get("/health", h.GetHealth)
		r.Post("/orchestrate", h.Orchestrate)
		r.Get("/invocations", h.ListInvocations)

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Route("/{policyName}", func(r chi.Router) {
				r.Get("/", h.GetPolicy)
				r.Delete("/", h.DeletePolicy)
				r.Post("/activate", h.ActivatePolicy)
				r.Put("/targets/{provider}", h.UpdateProviderTarget)
			})
		})
	})

	return router
}
