// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and decides:
// - Which URL patterns map to which handler functions
// - Which routes sit behind auth.RequireAuth
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go opens the store (MongoDB or SQLite) and the token service and
// hands both to New. New builds the rest:
//
//	repository.Store → JobService / BidService → JobHandler / BidHandler
//	TokenService     → AuthService → AuthHandler
//	                 ↘ auth.RequireAuth (protected route group)
//
// The server owns the store from then on and closes it on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/jobpost-server/internal/auth"
	"github.com/sakif/jobpost-server/internal/config"
	"github.com/sakif/jobpost-server/internal/handler"
	"github.com/sakif/jobpost-server/internal/middleware"
	"github.com/sakif/jobpost-server/internal/repository"
	"github.com/sakif/jobpost-server/internal/service"
)

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config *config.Config
	store  repository.Store
	logger *slog.Logger
}

// New wires services, handlers and routes around an open store.
func New(cfg *config.Config, store repository.Store, tokens *auth.TokenService, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		store:  store,
		logger: logger,
	}
	s.setupRoutes(tokens)
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                      → banner
//	GET    /healthz               → store ping
//	POST   /jwt                   → issue session cookie
//	GET    /logout                → clear session cookie
//	GET    /jobs                  → all jobs
//	POST   /jobs                  → create job
//	GET    /job/{id}              → one job
//	GET    /all-jobs              → filtered, sorted, paginated jobs
//	GET    /jobs-count            → count for the same filter
//	POST   /bids                  → place bid
//	PATCH  /bid/{id}              → change bid status
//	GET    /jobs/{email}          → [auth] jobs posted by the caller
//	PUT    /job/{id}              → [auth] update or create job
//	DELETE /job/{id}              → [auth] delete job
//	GET    /my-bids/{email}       → [auth] bids placed by the caller
//	GET    /bid-requests/{email}  → [auth] bids on the caller's jobs
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID, so the access log can print it
// 2. RealIP
// 3. Logger
// 4. Recoverer, inside Logger so a recovered panic is logged as a 500
// 5. CORS, with credentials so the browser sends the session cookie
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	validate := service.NewValidator()
	jobService := service.NewJobService(s.store.Jobs(), validate, s.logger)
	bidService := service.NewBidService(s.store.Bids(), s.store.Jobs(), validate, s.logger)
	authService := service.NewAuthService(tokens, validate, s.logger)

	health := handler.NewHealthHandler(s.store, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.config.Production(), s.logger)
	jobs := handler.NewJobHandler(jobService, s.logger)
	bids := handler.NewBidHandler(bidService, s.logger)

	s.router.Get("/", health.HandleRoot)
	s.router.Get("/healthz", health.HandleHealth)

	s.router.Post("/jwt", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	s.router.Get("/jobs", jobs.HandleList)
	s.router.Post("/jobs", jobs.HandleCreate)
	s.router.Get("/job/{id}", jobs.HandleGet)
	s.router.Get("/all-jobs", jobs.HandleBrowse)
	s.router.Get("/jobs-count", jobs.HandleCount)

	s.router.Post("/bids", bids.HandlePlace)
	s.router.Patch("/bid/{id}", bids.HandleUpdateStatus)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/jobs/{email}", jobs.HandleListByBuyer)
		r.Put("/job/{id}", jobs.HandleUpdate)
		r.Delete("/job/{id}", jobs.HandleDelete)
		r.Get("/my-bids/{email}", bids.HandleMyBids)
		r.Get("/bid-requests/{email}", bids.HandleBidRequests)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store (Mongo client disconnect or SQLite close)
func (s *Server) Start() error {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Environment),
			slog.String("store", s.config.StoreDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
