package auth

import (
	"crypto/subtle"

	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/jrsteele09/wedding-site/token"
	"golang.org/x/crypto/bcrypt"
)

// PasswordLogin is the legacy shared-password login. It has no rate limiting
// or lockout.
type PasswordLogin struct {
	password     string
	passwordHash string
	issuer       token.Issuer
}

// NewPasswordLogin compares against passwordHash (bcrypt) when set, otherwise
// against the plain password.
func NewPasswordLogin(password, passwordHash string, issuer token.Issuer) *PasswordLogin {
	return &PasswordLogin{
		password:     password,
		passwordHash: passwordHash,
		issuer:       issuer,
	}
}

// Login exchanges the admin password for a token. A wrong or empty password
// yields ErrInvalidCredentials; anything else is a configuration or internal
// fault.
func (p *PasswordLogin) Login(password string) (string, error) {
	if p.password == "" && p.passwordHash == "" {
		return "", errors.Wrapf(errors.ErrConfiguration, "admin password is not configured")
	}
	if password == "" {
		return "", errors.ErrInvalidCredentials
	}

	if err := p.compare(password); err != nil {
		return "", err
	}

	tok, err := p.issuer.Issue(nil)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInternal, "issue token: %v", err)
	}
	return tok, nil
}

func (p *PasswordLogin) compare(password string) error {
	if p.passwordHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(p.passwordHash), []byte(password))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return errors.ErrInvalidCredentials
		default:
			return errors.Wrapf(errors.ErrConfiguration, "admin password hash: %v", err)
		}
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) != 1 {
		return errors.ErrInvalidCredentials
	}
	return nil
}
