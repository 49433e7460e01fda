package ui

import (
	"net/http"

	"healthcorr/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// OpsServer is the operational listener: liveness and, optionally, pprof
type OpsServer struct {
	router *chi.Mux
	logger *internal.Logger
}

// NewOpsServer creates the ops listener. pprof is mounted under /debug when profiling is set.
func NewOpsServer(profiling bool, logger *internal.Logger) *OpsServer {
	o := &OpsServer{
		router: chi.NewRouter(),
		logger: internal.OrDefault(logger).With("OpsServer"),
	}

	o.router.Use(middleware.Recoverer)
	o.router.Use(middleware.Compress(5))

	o.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if profiling {
		o.router.Mount("/debug", middleware.Profiler())
	}
	return o
}

// Handler exposes the router for tests
func (o *OpsServer) Handler() http.Handler {
	return o.router
}

// Start starts the ops listener
func (o *OpsServer) Start(addr string) error {
	o.logger.Info("ops listening on %s", addr)
	return http.ListenAndServe(addr, o.router)
}
