// Package server exposes the application cache and derived views as a JSON
// API under /api/v1.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/internal/logging"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// Authenticator is the part of auth.Service the server needs.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, displayName string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	Resume(ctx context.Context, token string) (*auth.Session, error)
	SignOut(ctx context.Context, session *auth.Session) error
	Profile(ctx context.Context, session *auth.Session) (models.User, error)
	UpdateDisplayName(ctx context.Context, session *auth.Session, name string) (models.User, error)
}

type Config struct {
	Auth        Authenticator
	NewCache    func(*auth.Session) *cache.Cache
	Logger      logging.Logger
	CORSOrigins []string
}

type Server struct {
	auth     Authenticator
	sessions *registry
	logger   logging.Logger
	origins  []string
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		auth:     cfg.Auth,
		sessions: newRegistry(cfg.Auth, cfg.NewCache),
		logger:   logger,
		origins:  cfg.CORSOrigins,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(s.origins) == 0 || slices.Contains(s.origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.origins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)

		api.POST("/auth/signup", s.signUp)
		api.POST("/auth/login", s.signIn)

		authed := api.Group("", s.requireSession())
		authed.POST("/auth/logout", s.signOut)
		authed.GET("/me", s.profile)
		authed.PATCH("/me", s.updateProfile)

		authed.GET("/applications", s.listApplications)
		authed.POST("/applications", s.createApplication)
		authed.PATCH("/applications/:id", s.updateApplication)
		authed.DELETE("/applications/:id", s.deleteApplication)
		authed.GET("/stats", s.stats)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
