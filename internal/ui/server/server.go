package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/ui/auth"
	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/config"
	"github.com/nickabs/shopfront/internal/ui/handlers"
	"github.com/nickabs/shopfront/internal/ui/monitoring"
)

const (
	// ServerShutdownTimeout is the timeout for graceful server shutdown
	ServerShutdownTimeout = 10 * time.Second
)

type Server struct {
	router      *chi.Mux
	config      *config.Config
	logger      *slog.Logger
	authService *auth.AuthService
	apiClient   *client.Client
	monitor     *monitoring.Monitor
}

// NewServer creates the web client server. The monitor's lifecycle is owned by the caller.
func NewServer(cfg *config.Config, logger *slog.Logger, apiClient *client.Client, monitor *monitoring.Monitor) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		config:      cfg,
		logger:      logger,
		authService: auth.NewAuthService(cfg.SecureCookies()),
		apiClient:   apiClient,
		monitor:     monitor,
	}

	s.setupMiddleware()
	s.RegisterRoutes(s.router)
	return s
}

// NewAPIClient creates the API client using the retry settings from the config
func NewAPIClient(cfg *config.Config, logger *slog.Logger) *client.Client {
	return client.NewClient(cfg.APIBaseURL,
		client.WithRetryPolicy(client.RetryPolicy{
			Timeout:        cfg.APITimeout,
			Retries:        cfg.APIRetries,
			RetryDelayBase: cfg.APIRetryDelay,
		}),
		client.WithLogger(logger),
	)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) RegisterRoutes(router *chi.Mux) {
	handlerService := &handlers.HandlerService{
		AuthService: s.authService,
		ApiClient:   s.apiClient,
		Monitor:     s.monitor,
		Environment: s.config.Environment,
	}

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("./web/static/"))))

	router.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// public pages - the session is loaded when present so the navigation reflects the signed in user
	router.Group(func(r chi.Router) {
		r.Use(s.authService.LoadSession)

		r.Get("/", handlerService.HandleHome)
		r.Get("/products", handlerService.HandleProducts)
		r.Get("/products/{productID}", handlerService.HandleProduct)
		r.Get("/categories", handlerService.HandleCategories)
		r.Get("/access-denied", handlerService.HandleAccessDenied)

		r.Get("/login", handlerService.HandleLogin)
		r.Post("/login", handlerService.HandleLoginPost)
		r.Get("/register", handlerService.HandleRegister)
		r.Post("/register", handlerService.HandleRegisterPost)
		r.Get("/forgot-password", handlerService.HandleForgotPassword)
		r.Post("/forgot-password", handlerService.HandleForgotPasswordPost)
		r.Get("/reset-password", handlerService.HandleResetPassword)
		r.Post("/reset-password", handlerService.HandleResetPasswordPost)
	})

	router.Group(func(r chi.Router) {
		r.Use(s.authService.RequireAuth)

		r.Post("/logout", handlerService.HandleLogout)

		r.Get("/account", handlerService.HandleAccount)
		r.Post("/account", handlerService.HandleAccountUpdate)
		r.Put("/account/password", handlerService.HandleChangePassword)

		r.Get("/cart", handlerService.HandleCart)
		r.Post("/cart/items", handlerService.HandleAddToCart)
		r.Put("/cart/items/{productID}", handlerService.HandleUpdateCartItem)
		r.Delete("/cart/items/{productID}", handlerService.HandleRemoveCartItem)
	})
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger, "ui"))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
}

// Start runs the UI server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("UI server listening", slog.String("address", addr), slog.String("api", s.apiClient.BaseURL()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down UI server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}
