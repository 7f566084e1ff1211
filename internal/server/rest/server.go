// Package rest is the JSON/HTTP transport of the auth service, served with
// gin under /api/v1.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/logging"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/dmitrijs2005/signmanager/internal/server/models"
	"github.com/dmitrijs2005/signmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type userService interface {
	Register(ctx context.Context, email, displayName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
	Profile(ctx context.Context, email string) (*models.User, error)
}

type HTTPServer struct {
	address       string
	users         userService
	authenticator auth.Authenticator
	logger        logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, us userService, authn auth.Authenticator) *HTTPServer {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		users:         us,
		authenticator: authn,
	}
}

// Router returns the gin engine with all routes mounted.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.requestLogger(), gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, CodeNotFound, "not found", nil)
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", s.register)
		v1.POST("/auth/login", s.login)

		users := v1.Group("/users", s.requireAuth())
		users.GET("/me", s.me)
	}
	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve handles HTTP on lis until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
