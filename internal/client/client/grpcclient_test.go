package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/common"
	pb "github.com/dmitrijs2005/signmanager/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

/*************
 * Fake pb client
 *************/

type fakePB struct {
	lastPingReq     *pb.PingRequest
	lastLoginReq    *pb.LoginRequest
	lastRegisterReq *pb.RegisterUserRequest
	whoAmICalls     int

	pingResp *pb.PingResponse
	pingErr  error

	loginResp *pb.LoginResponse
	loginErr  error

	registerErr error

	whoAmIResp *pb.WhoAmIResponse
	whoAmIErr  error
}

func (f *fakePB) Ping(ctx context.Context, in *pb.PingRequest, opts ...grpc.CallOption) (*pb.PingResponse, error) {
	f.lastPingReq = in
	return f.pingResp, f.pingErr
}
func (f *fakePB) Login(ctx context.Context, in *pb.LoginRequest, opts ...grpc.CallOption) (*pb.LoginResponse, error) {
	f.lastLoginReq = in
	return f.loginResp, f.loginErr
}
func (f *fakePB) RegisterUser(ctx context.Context, in *pb.RegisterUserRequest, opts ...grpc.CallOption) (*pb.RegisterUserResponse, error) {
	f.lastRegisterReq = in
	return &pb.RegisterUserResponse{}, f.registerErr
}
func (f *fakePB) WhoAmI(ctx context.Context, in *pb.WhoAmIRequest, opts ...grpc.CallOption) (*pb.WhoAmIResponse, error) {
	f.whoAmICalls++
	return f.whoAmIResp, f.whoAmIErr
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_AttachesBearerToken(t *testing.T) {
	c := &GRPCClient{accessToken: "A1", tokenType: "Bearer"}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AuthorizationHeaderName)
		require.Len(t, toks, 1)
		require.Equal(t, "Bearer A1", toks[0])
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AuthorizationHeaderName))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_ReplacesCallerHeader(t *testing.T) {
	c := &GRPCClient{accessToken: "A2", tokenType: "Bearer"}
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, "Bearer stale", "x-other", "1")

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"Bearer A2"}, md.Get(common.AuthorizationHeaderName))
		require.Equal(t, []string{"1"}, md.Get("x-other"))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_PassesErrorsThrough(t *testing.T) {
	c := &GRPCClient{accessToken: "X", tokenType: "Bearer"}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Equal(t, codes.Internal, status.Code(err))
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Nil(t, c.mapError(nil))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.Equal(t, ErrAlreadyExists, c.mapError(status.Error(codes.AlreadyExists, "x")))

	err := c.mapError(status.Error(codes.InvalidArgument, "email: must be a valid email"))
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorContains(t, err, "must be a valid email")

	e := errors.New("plain")
	require.ErrorContains(t, c.mapError(e), "rpc error:")
}

/*************
 * Ping tests
 *************/

func TestPing_OK(t *testing.T) {
	f := &fakePB{pingResp: &pb.PingResponse{Status: "OK"}}
	c := &GRPCClient{client: f}
	require.NoError(t, c.Ping(context.Background()))
}

func TestPing_NotOK_ReturnsUnavailable(t *testing.T) {
	f := &fakePB{pingResp: &pb.PingResponse{Status: "NOT_OK"}}
	c := &GRPCClient{client: f}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestPing_MapsRPCError(t *testing.T) {
	f := &fakePB{pingErr: status.Error(codes.Unavailable, "down")}
	c := &GRPCClient{client: f}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

/*************
 * Register / Login / WhoAmI / Logout tests
 *************/

func TestRegister_SendsRequest(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f}

	require.NoError(t, c.Register(context.Background(), "a@x.com", "alice", []byte("password1")))
	require.Equal(t, &pb.RegisterUserRequest{Email: "a@x.com", DisplayName: "alice", Password: "password1"}, f.lastRegisterReq)
}

func TestRegister_Duplicate(t *testing.T) {
	f := &fakePB{registerErr: status.Error(codes.AlreadyExists, "email already registered")}
	c := &GRPCClient{client: f}

	require.ErrorIs(t, c.Register(context.Background(), "a@x.com", "", []byte("password1")), ErrAlreadyExists)
}

func TestLogin_StoresToken(t *testing.T) {
	f := &fakePB{loginResp: &pb.LoginResponse{AccessToken: "T", TokenType: "Bearer", ExpiresAt: 1_700_000_060}}
	c := &GRPCClient{client: f}

	sess, err := c.Login(context.Background(), "a@x.com", []byte("pw1"))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", sess.Email)
	require.Equal(t, time.Unix(1_700_000_060, 0), sess.ExpiresAt)
	require.True(t, c.IsLoggedIn())
	require.Equal(t, "T", c.accessToken)
	require.Equal(t, "pw1", f.lastLoginReq.Password)
}

func TestLogin_FailureKeepsPreviousToken(t *testing.T) {
	f := &fakePB{loginErr: status.Error(codes.Unauthenticated, "invalid credentials")}
	c := &GRPCClient{client: f, accessToken: "OLD", tokenType: "Bearer"}

	_, err := c.Login(context.Background(), "a@x.com", []byte("bad"))
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "OLD", c.accessToken)
}

func TestWhoAmI_RequiresLogin(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f}

	_, err := c.WhoAmI(context.Background())
	require.ErrorIs(t, err, ErrNotLoggedIn)
	require.Zero(t, f.whoAmICalls)
}

func TestLogout_ClearsToken(t *testing.T) {
	c := &GRPCClient{accessToken: "T", tokenType: "Bearer"}
	c.Logout()
	require.False(t, c.IsLoggedIn())
}

/*************
 * over the wire
 *************/

type fakeServer struct {
	pb.UnimplementedAuthServiceServer
}

func (fakeServer) Ping(context.Context, *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (fakeServer) Login(_ context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	if req.Password != "password1" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return &pb.LoginResponse{AccessToken: "tok-" + req.Email, TokenType: "Bearer", ExpiresAt: 1}, nil
}

func (fakeServer) WhoAmI(ctx context.Context, _ *pb.WhoAmIRequest) (*pb.WhoAmIResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get(common.AuthorizationHeaderName)
	if len(vals) != 1 || vals[0] != "Bearer tok-a@x.com" {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return &pb.WhoAmIResponse{Email: "a@x.com", DisplayName: "alice"}, nil
}

func newBufconnClient(t *testing.T) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterAuthServiceServer(srv, fakeServer{})
	go func() { _ = srv.Serve(lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
	})
	return c
}

func TestGRPCClient_OverBufconn(t *testing.T) {
	c := newBufconnClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.Login(ctx, "a@x.com", []byte("wrong"))
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "a@x.com", []byte("password1"))
	require.NoError(t, err)

	p, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	require.Equal(t, &Profile{Email: "a@x.com", DisplayName: "alice"}, p)

	c.Logout()
	_, err = c.WhoAmI(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestGRPCClient_UnimplementedMethod(t *testing.T) {
	c := newBufconnClient(t)

	err := c.Register(context.Background(), "a@x.com", "", []byte("password1"))
	require.ErrorContains(t, err, "rpc error:")
}
