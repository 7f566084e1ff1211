// Package client talks to the signmanager gRPC API on behalf of the CLI.
// The access token obtained by Login is kept in memory only and attached to
// every later call by a unary interceptor.
package client

import (
	"context"
	"time"
)

// Profile is the identity the server associates with the current token.
type Profile struct {
	Email       string
	DisplayName string
}

// Session describes the token held after a successful login.
type Session struct {
	Email     string
	ExpiresAt time.Time
}

type Client interface {
	Close() error
	Register(ctx context.Context, email, displayName string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*Session, error)
	WhoAmI(ctx context.Context) (*Profile, error)
	Ping(ctx context.Context) error
	Logout()
}
