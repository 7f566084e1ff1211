package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrMissingBearer is returned by ParseBearer for absent or non-bearer
// authorization values.
var ErrMissingBearer = errors.New("missing bearer token")

// Principal is the authenticated identity of a request.
type Principal struct {
	Subject string
}

// Authenticator turns a raw bearer token into a Principal.
type Authenticator interface {
	Authenticate(token string) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(token string) (Principal, error)

func (f AuthenticatorFunc) Authenticate(token string) (Principal, error) { return f(token) }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ParseBearer extracts the token from an "authorization" value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func ParseBearer(value string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, BearerScheme) {
		return "", ErrMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
