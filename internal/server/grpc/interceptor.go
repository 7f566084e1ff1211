package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/common"
	pb "github.com/dmitrijs2005/signmanager/internal/rpc"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicMethods skip authentication. Everything else requires a bearer token.
var publicMethods = map[string]struct{}{
	pb.AuthService_Ping_FullMethodName:         {},
	pb.AuthService_RegisterUser_FullMethodName: {},
	pb.AuthService_Login_FullMethodName:        {},
}

func firstMetadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	token, err := auth.ParseBearer(firstMetadataValue(ctx, common.AuthorizationHeaderName))
	if err != nil {
		s.logger.Warn(ctx, "rejected request", "method", info.FullMethod, "reason", "missing bearer token")
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	principal, err := s.authenticator.Authenticate(token)
	if err != nil {
		s.logger.Warn(ctx, "rejected request", "method", info.FullMethod, "reason", auth.RejectionReason(err))
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return handler(auth.WithPrincipal(ctx, principal), req)
}

func (s *GRPCServer) requestLoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstMetadataValue(ctx, common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	args := []any{
		"request_id", requestID,
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	}
	switch code {
	case codes.OK:
		s.logger.Info(ctx, "grpc request", args...)
	case codes.Internal, codes.Unknown:
		s.logger.Error(ctx, "grpc request", args...)
	default:
		s.logger.Warn(ctx, "grpc request", args...)
	}

	return resp, err
}
