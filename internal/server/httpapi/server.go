// Package httpapi exposes the custody engines over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/govkeeper/internal/logging"
	"github.com/dmitrijs2005/govkeeper/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server serves the public HTTP API.
type Server struct {
	address   string
	logger    logging.Logger
	handler   *handler
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, services *Services, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		handler:   &handler{services: services},
		jwtSecret: []byte(secretKey),
	}
}

// Router assembles the chi mux with the auth middleware on the protected
// subtree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handler.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handler.register)
		r.Post("/login", s.handler.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/user", s.handler.user)
			r.Get("/balances", s.handler.balances)

			r.Post("/deposits/locked", s.handler.depositLocked)
			r.Post("/deposits/vest", s.handler.depositVest)
			r.Get("/deposits", s.handler.listDeposits)

			r.Post("/claim", s.handler.claim)
			r.Get("/tickets/claim", s.handler.listClaimTickets)

			r.Post("/burn/locked", s.handler.burnLocked)
			r.Post("/burn/vest", s.handler.burnVest)

			r.Post("/redeem", s.handler.redeem)
			r.Get("/tickets/redeem", s.handler.listRedeemTickets)

			r.Get("/config", s.handler.getConfig)
			r.Post("/config/init", s.handler.initConfig)
			r.Patch("/config/params", s.handler.updateConfigParams)
			r.Patch("/config/authority", s.handler.updateConfigAuthority)
			r.Post("/config/fund", s.handler.fundAccount)

			r.Get("/statement", s.handler.statement)
		})
	})

	return metrics.InstrumentHandler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
