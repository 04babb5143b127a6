// Package server wires the repositories, session handling and HTTP handlers
// into one chi router and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/app/auth"
	"github.com/mytheresa/storefront/app/bootstrap"
	"github.com/mytheresa/storefront/app/catalog"
	"github.com/mytheresa/storefront/app/categories"
	"github.com/mytheresa/storefront/app/config"
	"github.com/mytheresa/storefront/app/log"
	"github.com/mytheresa/storefront/app/session"
	"github.com/mytheresa/storefront/app/upload"
	"github.com/mytheresa/storefront/models"
)

const (
	shutdownTimeout = 30 * time.Second
	pruneInterval   = time.Hour
)

type Server struct {
	cfg        *config.Config
	router     *chi.Mux
	httpServer *http.Server

	sessionStore session.Store
	sessions     *session.Manager
	limiter      *auth.RateLimiter
}

// New builds the router over db. Call Close when done to stop background work.
func New(cfg *config.Config, db *gorm.DB) *Server {
	var store session.Store
	switch cfg.SessionStore {
	case config.SessionStoreDatabase:
		store = session.NewGormStore(db)
	default:
		store = session.NewMemoryStore(session.DefaultCheckPeriod)
	}

	s := &Server{
		cfg:          cfg,
		router:       chi.NewRouter(),
		sessionStore: store,
		sessions: session.NewManager(store, session.Options{
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
		}),
		limiter: auth.NewRateLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow, cfg.LoginWindow),
	}
	s.setupRoutes(db)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(db *gorm.DB) {
	products := models.NewProductsRepository(db)
	categoryRepo := models.NewCategoriesRepository(db)
	admins := models.NewAdminsRepository(db)
	images := upload.NewStore(s.cfg.UploadDir, s.cfg.MaxUploadBytes)

	catalogHandler := catalog.NewCatalogHandler(products, categoryRepo, images)
	categoryHandler := categories.NewCategoryHandler(categoryRepo)
	authHandler := auth.NewAuthHandler(admins, s.sessions)
	initHandler := bootstrap.NewHandler(bootstrap.NewSeeder(admins, categoryRepo))

	r := s.router
	r.Use(middleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.StdLogger(), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Handle(upload.PublicPrefix+"*", uploadsHandler(s.cfg.UploadDir))

	r.Route("/api", func(r chi.Router) {
		r.With(s.limiter.Middleware).Post("/auth/login", authHandler.HandleLogin)
		r.Post("/init-data", initHandler.HandleInitData)

		r.Get("/categories", categoryHandler.HandleGetAll)
		r.Get("/products", catalogHandler.HandleGet)
		r.Get("/products/stats", catalogHandler.HandleStats)
		r.Get("/products/{id}", catalogHandler.HandleGetProduct)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(s.sessions))

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/auth/user", authHandler.HandleUser)

			r.Post("/categories", categoryHandler.HandleCreate)
			r.Post("/products", catalogHandler.HandleCreate)
			r.Put("/products/{id}", catalogHandler.HandleUpdate)
			r.Delete("/products/{id}", catalogHandler.HandleDelete)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadsHandler serves uploaded files without directory listings.
func uploadsHandler(dir string) http.Handler {
	fs := http.StripPrefix(upload.PublicPrefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			api.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// Start listens on the configured address and blocks until SIGINT/SIGTERM
// or ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          log.StdLogger(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.pruneSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down...")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("storefront stopped")
	return nil
}

// Close stops the background goroutines owned by the server.
func (s *Server) Close() {
	s.limiter.Close()
	if c, ok := s.sessionStore.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

// pruneSessions removes expired sessions periodically. The memory store
// prunes itself; this covers the database store.
func (s *Server) pruneSessions(ctx context.Context) {
	if _, ok := s.sessionStore.(*session.GormStore); !ok {
		return
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.sessions.Prune(ctx)
			if err != nil {
				log.Warn("failed to prune sessions", "err", err)
				continue
			}
			if n > 0 {
				log.Debug("pruned expired sessions", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
