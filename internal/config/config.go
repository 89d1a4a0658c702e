package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/wedding-site/internal/errors"
)

// Config is the process-wide, read-only configuration. It is built once at
// startup and passed to every component that needs it.
type Config interface {
	EnvConfig
	CorsConfig
	AuthConfig
	OAuthConfig
	StorageConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetSiteOrigin() string
	GetAdminPath() string
	TrustProxy() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Auth
	OAuth
	Storage
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Missing .env files are normal outside development
		_ = godotenv.Load(f)
	}

	var v Values
	if err := env.Parse(&v); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return New(v), nil
}

// New normalises raw values into an immutable Config.
func New(v Values) Config {
	return mainConfig{
		EnvVars: newEnvVars(v),
		Cors:    newCors(v),
		Auth:    newAuth(v),
		OAuth:   newOAuth(v),
		Storage: newStorage(v),
	}
}

// Validate reports every missing setting that would make an endpoint fail
// with a configuration fault at request time.
func (c mainConfig) Validate() error {
	var missing []string
	if c.GetAuthSecret() == "" {
		missing = append(missing, authSecretVar)
	}
	if c.GetAdminPassword() == "" && c.GetAdminPasswordHash() == "" && !c.GoogleEnabled() {
		missing = append(missing, adminPasswordVar+" or "+googleClientIDVar)
	}
	if c.GoogleEnabled() && c.GetGoogleClientSecret() == "" {
		missing = append(missing, googleClientSecretVar)
	}
	if c.GoogleEnabled() && len(c.GetAllowedAdminEmails()) == 0 {
		missing = append(missing, allowedAdminEmailsVar)
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Wrapf(errors.ErrConfiguration, "missing %s", strings.Join(missing, ", "))
}
