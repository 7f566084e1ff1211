package auth

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
)

// MinKeyLength is the minimum decoded key size for HS256 (256 bits).
const MinKeyLength = 32

const redacted = "[REDACTED]"

// SigningKey is the symmetric HMAC key. It is decoded once at startup and
// never printed: every formatting path yields a redacted placeholder.
type SigningKey struct {
	b []byte
}

// KeyInitError reports an unusable configured signing key.
type KeyInitError struct {
	Reason string
	Err    error
}

func (e *KeyInitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing key: %s: %v", e.Reason, e.Err)
	}
	return "signing key: " + e.Reason
}

func (e *KeyInitError) Unwrap() error { return e.Err }

// InitSigningKey decodes a standard base64 key. Surrounding whitespace is
// ignored. Keys shorter than MinKeyLength bytes are rejected.
func InitSigningKey(encoded string) (SigningKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return SigningKey{}, &KeyInitError{Reason: "not configured"}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return SigningKey{}, &KeyInitError{Reason: "invalid base64", Err: err}
	}
	if len(raw) < MinKeyLength {
		return SigningKey{}, &KeyInitError{
			Reason: fmt.Sprintf("decoded key is %d bytes, need at least %d", len(raw), MinKeyLength),
		}
	}

	return SigningKey{b: raw}, nil
}

// IsZero reports whether the key was never initialised.
func (k SigningKey) IsZero() bool { return len(k.b) == 0 }

func (k SigningKey) String() string { return redacted }

func (k SigningKey) GoString() string { return "auth.SigningKey{" + redacted + "}" }

func (k SigningKey) LogValue() slog.Value { return slog.StringValue(redacted) }

func (k SigningKey) bytes() []byte { return k.b }
