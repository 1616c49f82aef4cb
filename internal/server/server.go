// Package server wires the API handlers, middleware and http server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickabs/shopfront/internal/auth"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/server/config"
	"github.com/nickabs/shopfront/internal/server/handlers"
	"github.com/nickabs/shopfront/internal/server/middleware"
	"github.com/nickabs/shopfront/internal/server/schemas"
)

type Server struct {
	pool         *pgxpool.Pool
	queries      *database.Queries
	authService  *auth.AuthService
	serverConfig *config.ServerEnvironment
	corsConfigs  *config.CORSConfigs
	logger       *slog.Logger
	mailer       handlers.Mailer
	schemas      *schemas.Cache
	router       *chi.Mux
}

func NewServer(pool *pgxpool.Pool, serverConfig *config.ServerEnvironment, corsConfigs *config.CORSConfigs, logger *slog.Logger, mailer handlers.Mailer) *Server {
	queries := database.New(pool)

	s := &Server{
		pool:         pool,
		queries:      queries,
		authService:  auth.NewAuthService(serverConfig.SecretKey, serverConfig.Environment, serverConfig.AccessTokenExpiry, queries),
		serverConfig: serverConfig,
		corsConfigs:  corsConfigs,
		logger:       logger,
		mailer:       mailer,
		schemas:      schemas.NewCache(),
		router:       chi.NewRouter(),
	}

	s.setupMiddleware()
	s.registerCommonRoutes()
	s.registerCatalogRoutes()
	s.registerAccountRoutes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then shuts down gracefully and closes the database pool.
func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.serverConfig.Host, s.serverConfig.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.serverConfig.ReadTimeout,
		WriteTimeout: s.serverConfig.WriteTimeout,
		IdleTimeout:  s.serverConfig.IdleTimeout,
	}

	defer func() {
		s.logger.Info("closing database connections")
		s.pool.Close()
		s.logger.Info("database connection closed")
	}()

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.serverConfig.Environment),
			slog.String("address", serverAddr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("service shutting down")

	// force an exit if server does not shutdown within configured timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// setupMiddleware sets up the middleware that applies to all server requests
// note that the payload size limit and CORS policy are set on a per-route basis
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger, "api"))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.serverConfig.Environment))
	s.router.Use(middleware.RateLimit(s.serverConfig.RateLimitRPS, s.serverConfig.RateLimitBurst))
}

// registerCommonRoutes registers the health and version endpoints
func (s *Server) registerCommonRoutes() {
	health := handlers.NewHealthHandler(s.pool)

	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/version", health.VersionHandler)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.CORS(s.corsConfigs.Public))
		r.Get("/api/health", health.HealthHandler)
	})
}

// registerCatalogRoutes registers the category and product endpoints. Reads are public, writes require an admin token.
func (s *Server) registerCatalogRoutes() {
	categories := handlers.NewCategoryHandler(s.queries, s.schemas)
	products := handlers.NewProductHandler(s.queries, s.schemas)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.CORS(s.corsConfigs.Public))

		r.Get("/api/categories", categories.ListCategoriesHandler)
		r.Get("/api/categories/{id}", categories.GetCategoryHandler)
		r.Get("/api/products", products.ListProductsHandler)
		r.Get("/api/products/{id}", products.GetProductHandler)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.CORS(s.corsConfigs.Protected))
		r.Use(middleware.RequestSizeLimit(s.serverConfig.MaxAPIRequestSize))
		r.Use(s.authService.RequireValidAccessToken)
		r.Use(s.authService.RequireAdmin)

		r.Post("/api/categories", categories.CreateCategoryHandler)
		r.Put("/api/categories/{id}", categories.UpdateCategoryHandler)
		r.Delete("/api/categories/{id}", categories.DeleteCategoryHandler)

		r.Post("/api/products", products.CreateProductHandler)
		r.Put("/api/products/{id}", products.UpdateProductHandler)
		r.Delete("/api/products/{id}", products.DeleteProductHandler)
	})
}

// registerAccountRoutes registers the user, cart and monitoring endpoints
func (s *Server) registerAccountRoutes() {
	users := handlers.NewUserHandler(s.queries, s.authService, s.pool, s.mailer)
	cart := handlers.NewCartHandler(s.queries)
	monitoring := handlers.NewMonitoringHandler(s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.CORS(s.corsConfigs.Protected))
		r.Use(middleware.RequestSizeLimit(s.serverConfig.MaxAPIRequestSize))

		r.Route("/api/users", func(r chi.Router) {
			r.Post("/register", users.RegisterUserHandler)
			r.Post("/login", users.LoginHandler)
			r.Post("/forgot-password", users.ForgotPasswordHandler)
			r.Post("/reset-password", users.ResetPasswordHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.authService.RequireValidAccessToken)

				r.Get("/me", users.GetMeHandler)
				r.Put("/me", users.UpdateMeHandler)
				r.Put("/me/password", users.UpdatePasswordHandler)
			})

			// exposes the email addresses of all users
			r.Group(func(r chi.Router) {
				r.Use(s.authService.RequireValidAccessToken)
				r.Use(s.authService.RequireAdmin)

				r.Get("/", users.ListUsersHandler)
				r.Get("/{id}", users.GetUserHandler)
			})
		})

		r.Route("/api/cart", func(r chi.Router) {
			r.Use(s.authService.RequireValidAccessToken)

			r.Get("/", cart.GetCartHandler)
			r.Post("/", cart.AddToCartHandler)
			r.Put("/{product_id}", cart.UpdateCartItemHandler)
			r.Delete("/{product_id}", cart.RemoveFromCartHandler)
		})

		r.Post("/api/monitoring/errors", monitoring.ReportErrorsHandler)
	})
}
