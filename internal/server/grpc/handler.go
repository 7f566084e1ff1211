package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/signmanager/internal/common"
	pb "github.com/dmitrijs2005/signmanager/internal/rpc"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/dmitrijs2005/signmanager/internal/validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *pb.RegisterUserRequest) (*pb.RegisterUserResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	user, err := s.users.Register(ctx, req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorDuplicateIdentifier):
			return nil, status.Error(codes.AlreadyExists, "email already registered")
		case errors.Is(err, common.ErrorValidation):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &pb.RegisterUserResponse{ID: user.ID, Email: user.Email}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	token, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		s.logger.Error(ctx, "login failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &pb.LoginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.Unix(),
	}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *pb.WhoAmIRequest) (*pb.WhoAmIResponse, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	user, err := s.users.Profile(ctx, p.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		s.logger.Error(ctx, "profile lookup failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &pb.WhoAmIResponse{Email: user.Email, DisplayName: user.DisplayName}, nil
}
