// Package grpc is the gRPC transport of the auth service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/signmanager/internal/logging"
	pb "github.com/dmitrijs2005/signmanager/internal/rpc"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/dmitrijs2005/signmanager/internal/server/models"
	"github.com/dmitrijs2005/signmanager/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	Register(ctx context.Context, email, displayName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
	Profile(ctx context.Context, email string) (*models.User, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address       string
	users         userService
	authenticator auth.Authenticator
	logger        logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us userService, authn auth.Authenticator) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		users:         us,
		authenticator: authn,
	}
}

// newServer builds the grpc.Server with request logging ahead of
// authentication.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestLoggingInterceptor,
		s.authInterceptor,
	))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
