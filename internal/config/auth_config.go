package config

import "time"

// AuthConfig carries the secrets for token issuance and the legacy password
// login. None of these values may ever be logged.
type AuthConfig interface {
	GetAuthSecret() string
	GetAdminPassword() string
	GetAdminPasswordHash() string
	GetTokenTTL() time.Duration
}

type Auth struct {
	authSecret        string
	adminPassword     string
	adminPasswordHash string
	tokenTTL          time.Duration
}

var _ AuthConfig = Auth{}

func newAuth(v Values) Auth {
	ttl := v.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Auth{
		authSecret:        v.AuthSecret,
		adminPassword:     v.AdminPassword,
		adminPasswordHash: v.AdminPasswordBcrypt,
		tokenTTL:          ttl,
	}
}

// GetAuthSecret is the HMAC key shared by the password and OAuth logins.
func (a Auth) GetAuthSecret() string {
	return a.authSecret
}

func (a Auth) GetAdminPassword() string {
	return a.adminPassword
}

// GetAdminPasswordHash is an optional bcrypt hash that takes precedence over
// the plain admin password.
func (a Auth) GetAdminPasswordHash() string {
	return a.adminPasswordHash
}

func (a Auth) GetTokenTTL() time.Duration {
	return a.tokenTTL
}
