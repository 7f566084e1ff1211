package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/common"
	pb "github.com/dmitrijs2005/signmanager/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
	tokenType   string
}

func withAccessToken(ctx context.Context, scheme, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, scheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	token, scheme := s.accessToken, s.tokenType
	s.mu.RUnlock()

	if token != "" {
		ctx = withAccessToken(ctx, scheme, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily. Extra dial options are applied
// after the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Register(ctx context.Context, email, displayName string, password []byte) error {
	req := &pb.RegisterUserRequest{Email: email, DisplayName: displayName, Password: string(password)}

	if _, err := s.client.RegisterUser(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

// Login stores the returned token for subsequent calls. A failed login
// leaves any earlier session untouched.
func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) (*Session, error) {
	req := &pb.LoginRequest{Email: email, Password: string(password)}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.tokenType = resp.TokenType
	s.mu.Unlock()

	return &Session{Email: email, ExpiresAt: time.Unix(resp.ExpiresAt, 0)}, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*Profile, error) {
	if !s.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Profile{Email: resp.Email, DisplayName: resp.DisplayName}, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Logout forgets the token. There is nothing to revoke server-side.
func (s *GRPCClient) Logout() {
	s.mu.Lock()
	s.accessToken = ""
	s.tokenType = ""
	s.mu.Unlock()
}

func (s *GRPCClient) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
