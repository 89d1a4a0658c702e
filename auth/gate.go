package auth

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/jrsteele09/wedding-site/token"
)

const bearerPrefix = "Bearer "

// Decision is the outcome of checking a request's credentials. A denied
// decision never says which check failed.
type Decision struct {
	Allowed bool
	Err     error
}

// Gate authorizes privileged requests carrying an admin token.
type Gate struct {
	verifier token.Verifier
}

func NewGate(verifier token.Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authorize requires "Authorization: Bearer <token>" with a valid token.
func (g *Gate) Authorize(h http.Header) Decision {
	tok, ok := strings.CutPrefix(h.Get("Authorization"), bearerPrefix)
	if !ok || tok == "" {
		return Decision{Err: errors.ErrUnauthorized}
	}
	if !g.verifier.Verify(tok) {
		return Decision{Err: errors.ErrUnauthorized}
	}
	return Decision{Allowed: true}
}
