package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestKey(t testing.TB, seed byte) SigningKey {
	t.Helper()
	raw := make([]byte, 48)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	key, err := InitSigningKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	return key
}

func fixedClock(at *time.Time) Option {
	return WithClock(func() time.Time { return *at })
}

func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestIssueValidateExtract_RoundTrip(t *testing.T) {
	t.Parallel()

	now := t0
	eng := NewEngine(newTestKey(t, 1), fixedClock(&now))

	tok, err := eng.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "Bearer", tok.Scheme)
	assert.Equal(t, t0, tok.IssuedAt)
	assert.Equal(t, t0.Add(time.Hour), tok.ExpiresAt)
	assert.Len(t, strings.Split(tok.Value, "."), 3)

	res := eng.Validate(tok.Value)
	assert.True(t, res.Valid())
	assert.Equal(t, ReasonNone, res.Reason)

	sub, err := eng.ExtractSubject(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)

	p, err := eng.Authenticate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, Principal{Subject: "a@x.com"}, p)
}

func TestIssue_ClaimsOnTheWire(t *testing.T) {
	t.Parallel()

	now := t0.Add(750 * time.Millisecond)
	eng := NewEngine(newTestKey(t, 1), fixedClock(&now))

	tok, err := eng.Issue("a@x.com", 90*time.Second)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok.Value, claims)
	require.NoError(t, err)

	assert.Equal(t, "HS256", parsed.Header["alg"])
	assert.Equal(t, "JWT", parsed.Header["typ"])
	assert.Equal(t, "a@x.com", claims["sub"])
	assert.EqualValues(t, t0.Unix(), claims["iat"])
	assert.EqualValues(t, t0.Unix()+91, claims["exp"])
}

func TestIssue_LateInSecondKeepsFullLifetime(t *testing.T) {
	t.Parallel()

	now := t0.Add(999 * time.Millisecond)
	eng := NewEngine(newTestKey(t, 4), fixedClock(&now))

	tok, err := eng.Issue("a@x.com", time.Second)
	require.NoError(t, err)
	assert.Equal(t, t0, tok.IssuedAt)
	assert.Equal(t, t0.Add(2*time.Second), tok.ExpiresAt)

	assert.True(t, eng.Validate(tok.Value).Valid())

	now = now.Add(2 * time.Millisecond)
	assert.True(t, eng.Validate(tok.Value).Valid())

	now = t0.Add(2 * time.Second)
	assert.Equal(t, ReasonExpired, eng.Validate(tok.Value).Reason)
}

func TestIssue_Errors(t *testing.T) {
	t.Parallel()

	eng := NewEngine(newTestKey(t, 1))

	_, err := eng.Issue("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = eng.Issue("a@x.com", -time.Second)
	assert.ErrorIs(t, err, ErrNegativeTTL)

	_, err = NewEngine(SigningKey{}).Issue("a@x.com", time.Hour)
	assert.ErrorIs(t, err, ErrNoSigningKey)
}

func TestValidate_ZeroTTLIsExpired(t *testing.T) {
	t.Parallel()

	eng := NewEngine(newTestKey(t, 2))
	tok, err := eng.Issue("a@x.com", 0)
	require.NoError(t, err)

	assert.Equal(t, ReasonExpired, eng.Validate(tok.Value).Reason)

	_, err = eng.ExtractSubject(tok.Value)
	var terr *TokenError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ReasonExpired, terr.Reason)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	now := t0
	eng := NewEngine(newTestKey(t, 3), fixedClock(&now))
	tok, err := eng.Issue("a@x.com", time.Minute)
	require.NoError(t, err)

	now = t0.Add(time.Minute - time.Nanosecond)
	assert.True(t, eng.Validate(tok.Value).Valid())

	now = t0.Add(time.Minute)
	assert.Equal(t, ReasonExpired, eng.Validate(tok.Value).Reason)

	now = t0.Add(24 * time.Hour)
	assert.Equal(t, ReasonExpired, eng.Validate(tok.Value).Reason)
}

func TestValidate_AnySignatureCharacterAltered(t *testing.T) {
	t.Parallel()

	eng := NewEngine(newTestKey(t, 4))
	tok, err := eng.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	sigStart := strings.LastIndex(tok.Value, ".") + 1
	for i := sigStart; i < len(tok.Value); i++ {
		b := []byte(tok.Value)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		res := eng.Validate(string(b))
		if res.Reason != ReasonSignatureMismatch {
			t.Fatalf("altering signature char %d: got %v, want %v", i-sigStart, res.Reason, ReasonSignatureMismatch)
		}
	}
}

func TestValidate_ForeignKey(t *testing.T) {
	t.Parallel()

	issuer := NewEngine(newTestKey(t, 5))
	verifier := NewEngine(newTestKey(t, 6))

	tok, err := issuer.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, ReasonSignatureMismatch, verifier.Validate(tok.Value).Reason)
}

func TestValidate_ForgedPayload(t *testing.T) {
	t.Parallel()

	eng := NewEngine(newTestKey(t, 7))
	tok, err := eng.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok.Value, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin@x.com","exp":4102444800}`))
	res := eng.Validate(parts[0] + "." + forged + "." + parts[2])

	assert.Equal(t, ReasonSignatureMismatch, res.Reason)
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	key := newTestKey(t, 8)
	eng := NewEngine(key)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	noneTok := signRaw(t, jwt.SigningMethodNone, jwt.MapClaims{"sub": "a@x.com", "exp": exp.Unix()}, jwt.UnsafeAllowNoneSignatureType)
	hs512 := signRaw(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "a@x.com", "exp": exp.Unix()}, key.bytes())
	noSub := signRaw(t, jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}, key.bytes())
	noExp := signRaw(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a@x.com"}, key.bytes())
	badExp := signRaw(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a@x.com", "exp": "tomorrow"}, key.bytes())

	tests := []struct {
		name  string
		token string
		want  Reason
	}{
		{"empty", "", ReasonMalformed},
		{"one segment", "abc", ReasonMalformed},
		{"two segments", "abc.def", ReasonMalformed},
		{"four segments", "a.b.c.d", ReasonMalformed},
		{"header not base64", "!!!.e30.c2ln", ReasonMalformed},
		{"header not json", base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".e30.c2ln", ReasonMalformed},
		{"missing sub", noSub, ReasonMalformed},
		{"missing exp", noExp, ReasonMalformed},
		{"exp wrong type", badExp, ReasonMalformed},
		{"alg none", noneTok, ReasonSignatureMismatch},
		{"alg HS512", hs512, ReasonSignatureMismatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := eng.Validate(tt.token)
			assert.False(t, res.Valid())
			assert.Equal(t, tt.want, res.Reason)

			_, err := eng.Authenticate(tt.token)
			var terr *TokenError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tt.want, terr.Reason)
		})
	}
}

// Register a@x.com, log in at t0 with a one hour TTL, then present the token
// before and after expiry.
func TestScenario_LoginTokenLifecycle(t *testing.T) {
	t.Parallel()

	now := t0
	eng := NewEngine(newTestKey(t, 9), fixedClock(&now))

	tok, err := eng.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	now = t0.Add(59*time.Minute + 59*time.Second)
	p, err := eng.Authenticate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Subject)

	now = t0.Add(time.Hour + time.Second)
	_, err = eng.Authenticate(tok.Value)
	var terr *TokenError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, ReasonExpired, terr.Reason)
	assert.EqualError(t, err, "invalid token: expired")
}

func TestEngine_ConcurrentUse(t *testing.T) {
	t.Parallel()

	eng := NewEngine(newTestKey(t, 10))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := eng.Issue("a@x.com", time.Minute)
			if err != nil {
				errs <- err
				return
			}
			if _, err := eng.ExtractSubject(tok.Value); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent use: %v", err)
	}
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "none", ReasonNone.String())
	assert.Equal(t, "malformed", ReasonMalformed.String())
	assert.Equal(t, "signature mismatch", ReasonSignatureMismatch.String())
	assert.Equal(t, "expired", ReasonExpired.String())
	assert.Equal(t, "reason(42)", Reason(42).String())
}

func FuzzValidate(f *testing.F) {
	key := newTestKey(f, 11)
	eng := NewEngine(key)
	tok, err := eng.Issue("a@x.com", time.Hour)
	if err != nil {
		f.Fatal(err)
	}

	f.Add(tok.Value)
	f.Add("")
	f.Add("...")
	f.Add("a.b.c")
	f.Add(strings.Repeat(".", 100))

	f.Fuzz(func(t *testing.T, s string) {
		res := eng.Validate(s)
		if res.Valid() && s != tok.Value {
			sub, err := eng.ExtractSubject(s)
			if err != nil || sub == "" {
				t.Fatalf("valid token %q without subject: %v", s, err)
			}
		}
	})
}
