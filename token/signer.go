package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/wedding-site/internal/errors"
)

const (
	// RoleAdmin is the only role a token can carry.
	RoleAdmin = "admin"

	// DefaultTTL is the lifetime of an issued token.
	DefaultTTL = 24 * time.Hour

	separator = "."
)

// Claims is the JSON payload of a token.
type Claims = jwt.MapClaims

// Issuer creates signed admin tokens.
type Issuer interface {
	Issue(extra Claims) (string, error)
}

// Verifier checks tokens. Verify never fails loudly: any malformed, expired
// or forged token is simply invalid.
type Verifier interface {
	Verify(token string) bool
}

// HMACSigner issues and verifies tokens of the form
// base64(payloadJSON) "." base64(HMAC-SHA256(secret, payloadJSON)).
// It holds no mutable state and is safe for concurrent use.
type HMACSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ Issuer   = (*HMACSigner)(nil)
	_ Verifier = (*HMACSigner)(nil)
)

type Option func(*HMACSigner)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(h *HMACSigner) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(h *HMACSigner) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHMACSigner creates a signer keyed by secret. An empty secret still signs;
// catching that is a deployment concern.
func NewHMACSigner(secret string, opts ...Option) *HMACSigner {
	h := &HMACSigner{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Issue builds {role:"admin", exp:now+ttl} merged with extra claims (which
// cannot override role or exp) and signs the exact JSON bytes.
func (h *HMACSigner) Issue(extra Claims) (string, error) {
	claims := make(Claims, len(extra)+2)
	for k, v := range extra {
		claims[k] = v
	}
	claims["role"] = RoleAdmin
	claims["exp"] = h.now().Add(h.ttl).Unix()

	// Map keys marshal in sorted order, so the serialization is stable.
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", errors.Wrapf(err, "failed to marshal token claims")
	}

	return base64.StdEncoding.EncodeToString(payload) + separator +
		base64.StdEncoding.EncodeToString(h.sign(payload)), nil
}

// Verify reports whether token was signed with this signer's secret and has
// not expired.
func (h *HMACSigner) Verify(token string) bool {
	_, ok := h.parse(token)
	return ok
}

// Claims returns the verified claims of token.
func (h *HMACSigner) Claims(token string) (Claims, bool) {
	return h.parse(token)
}

func (h *HMACSigner) parse(token string) (Claims, bool) {
	payloadB64, signatureB64, found := strings.Cut(token, separator)
	if !found || payloadB64 == "" || signatureB64 == "" {
		return nil, false
	}

	payload, err := base64.StdEncoding.Strict().DecodeString(payloadB64)
	if err != nil {
		return nil, false
	}
	// The decoder tolerates newlines; only the canonical encoding is accepted.
	if base64.StdEncoding.EncodeToString(payload) != payloadB64 {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}

	// exp is compared as the raw JSON number so fractional seconds count.
	exp, ok := claims["exp"].(float64)
	if !ok || exp <= unixSeconds(h.now()) {
		return nil, false
	}

	expected := base64.StdEncoding.EncodeToString(h.sign(payload))
	if !hmac.Equal([]byte(expected), []byte(signatureB64)) {
		return nil, false
	}
	return claims, true
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func (h *HMACSigner) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Verify is a convenience for one-off checks against secret.
func Verify(token, secret string) bool {
	return NewHMACSigner(secret).Verify(token)
}
