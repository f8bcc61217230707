package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/matthieukhl/shopfront/internal/config"
)

// Pinger is anything the health check can ping.
type Pinger func(ctx context.Context) error

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Catalog Catalog
	Carts   Carts
	Orders  Orders
	Auth    Accounts
	Images  Images

	DB    Pinger
	Redis Pinger
}

type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	log      *slog.Logger
	sessions sessions.Store
	deps     Deps
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	server := &Server{
		router:   router,
		cfg:      cfg,
		log:      log,
		sessions: newSessionStore(cfg.Session, log),
		deps:     deps,
	}

	server.setupRoutes()
	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(
		requestLogger(s.log),
		gin.CustomRecovery(s.recoverPanic),
		cors.New(corsConfig(s.cfg.Server.AllowedOrigins)),
		preflight,
		s.sessionID(),
		s.bearer(),
	)

	s.router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "endpoint not found")
	})
	s.router.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.register(s.router.Group(""))
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		s.register(api)
	}
}

func (s *Server) register(r *gin.RouterGroup) {
	r.POST("/auth", s.login)
	r.GET("/auth", s.currentUser)
	r.DELETE("/auth", s.logout)
	r.POST("/register", s.registerUser)

	r.GET("/products", s.listProducts)
	r.POST("/products", s.createProduct)
	r.PUT("/products", s.updateProduct)
	r.DELETE("/products", s.deleteProduct)
	r.POST("/products/image", s.uploadImage)

	r.GET("/cart", s.getCart)
	r.POST("/cart", s.addToCart)
	r.DELETE("/cart", s.removeFromCart)

	r.GET("/orders", s.listOrders)
	r.POST("/orders", s.createOrder)
	r.PUT("/orders", s.updateOrderStatus)
	r.POST("/orders/advance", s.advanceOrder)
	r.DELETE("/orders", s.deleteOrder)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		AllowCredentials:          true,
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials cannot be combined with a literal wildcard origin
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]Pinger{"database": s.deps.DB, "redis": s.deps.Redis}
	for name, ping := range checks {
		if ping == nil {
			continue
		}
		if err := ping(ctx); err != nil {
			s.log.Error("health check failed", slog.String("dependency", name), slog.Any("error", err))
			fail(c, http.StatusServiceUnavailable, name+" connection failed")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
		"service": "shopfront",
	})
}

// Start serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
