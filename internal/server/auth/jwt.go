// Package auth implements the token engine: HS256 bearer tokens carrying the
// subject (user email), their validation and subject extraction, plus the
// request-scoped principal.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BearerScheme is returned with every issued token.
const BearerScheme = "Bearer"

var (
	ErrEmptySubject = errors.New("token subject is empty")
	ErrNegativeTTL  = errors.New("token ttl is negative")
	ErrNoSigningKey = errors.New("signing key is not initialised")
)

// Claims carried by every token: sub, iat, exp.
type Claims struct {
	jwt.RegisteredClaims
}

// IssuedToken is the result of a successful Issue call.
type IssuedToken struct {
	Value     string
	Scheme    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Reason says why a token was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMalformed
	ReasonSignatureMismatch
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMalformed:
		return "malformed"
	case ReasonSignatureMismatch:
		return "signature mismatch"
	case ReasonExpired:
		return "expired"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ValidationResult is Valid() or carries the rejection Reason.
type ValidationResult struct {
	Reason Reason
}

func (v ValidationResult) Valid() bool { return v.Reason == ReasonNone }

// TokenError is returned by ExtractSubject and Authenticate for tokens that
// do not validate.
type TokenError struct {
	Reason Reason
}

func (e *TokenError) Error() string { return "invalid token: " + e.Reason.String() }

// RejectionReason is the loggable cause of an Authenticate failure. It is
// for logs only; callers see a generic message.
func RejectionReason(err error) string {
	var terr *TokenError
	if errors.As(err, &terr) {
		return terr.Reason.String()
	}
	return err.Error()
}

type Option func(*Engine)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine issues and verifies tokens with a single HS256 key. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	key    SigningKey
	now    func() time.Time
	parser *jwt.Parser
}

// NewEngine binds the engine to key, which must come from InitSigningKey.
func NewEngine(key SigningKey, opts ...Option) *Engine {
	e := &Engine{
		key: key,
		now: time.Now,
		// Expiry is checked by the engine against its own clock.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Issue signs a token for subject that expires ttl from now.
func (e *Engine) Issue(subject string, ttl time.Duration) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, ErrEmptySubject
	}
	if ttl < 0 {
		return IssuedToken{}, ErrNegativeTTL
	}
	if e.key.IsZero() {
		return IssuedToken{}, ErrNoSigningKey
	}

	// The wire format has one-second precision. exp is rounded up so the
	// token lives at least ttl.
	now := e.now()
	issuedAt := now.Truncate(time.Second)
	expiresAt := ceilSecond(now.Add(ttl))
	if ttl == 0 {
		expiresAt = issuedAt
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(e.key.bytes())
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{
		Value:     signed,
		Scheme:    BearerScheme,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks structure, then signature, then expiry. It never panics
// and never returns an error.
func (e *Engine) Validate(token string) ValidationResult {
	_, reason := e.verify(token)
	return ValidationResult{Reason: reason}
}

// ExtractSubject returns the sub claim. Callers are expected to Validate
// first; the token is verified again here and a *TokenError is returned
// instead of unverified data.
func (e *Engine) ExtractSubject(token string) (string, error) {
	claims, reason := e.verify(token)
	if reason != ReasonNone {
		return "", &TokenError{Reason: reason}
	}
	return claims.Subject, nil
}

// Authenticate validates the token and returns the principal it names.
func (e *Engine) Authenticate(token string) (Principal, error) {
	sub, err := e.ExtractSubject(token)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Subject: sub}, nil
}

func (e *Engine) verify(token string) (*Claims, Reason) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ReasonMalformed
	}

	claims := &Claims{}
	_, err := e.parser.ParseWithClaims(token, claims, e.keyFunc)
	if err != nil {
		return nil, e.classify(parts, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ReasonMalformed
	}
	if !e.now().Before(claims.ExpiresAt.Time) {
		return nil, ReasonExpired
	}
	return claims, ReasonNone
}

func ceilSecond(t time.Time) time.Time {
	if d := t.Truncate(time.Second); !d.Equal(t) {
		return d.Add(time.Second)
	}
	return t
}

func (e *Engine) keyFunc(*jwt.Token) (any, error) {
	if e.key.IsZero() {
		return nil, ErrNoSigningKey
	}
	return e.key.bytes(), nil
}

// classify maps a parser error to a Reason. The parser reports an
// undecodable signature segment as malformed; when header and payload
// decode cleanly on their own, the damage is in the signature.
func (e *Engine) classify(parts []string, err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonSignatureMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		unsigned := parts[0] + "." + parts[1] + "."
		if _, _, perr := e.parser.ParseUnverified(unsigned, &Claims{}); perr == nil {
			return ReasonSignatureMismatch
		}
		return ReasonMalformed
	default:
		return ReasonMalformed
	}
}
