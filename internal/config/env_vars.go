package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	port       string
	appName    string
	env        string
	logLevel   string
	siteOrigin string
	adminPath  string
	trustProxy bool
}

var _ EnvConfig = EnvVars{}

func newEnvVars(v Values) EnvVars {
	port := strings.TrimSpace(v.Port)
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}

	adminPath := strings.TrimSpace(v.AdminPath)
	if adminPath == "" {
		adminPath = "/admin"
	}
	if !strings.HasPrefix(adminPath, "/") {
		adminPath = "/" + adminPath
	}

	env := strings.ToUpper(strings.TrimSpace(v.Env))
	if env == "" {
		env = "DEV"
	}

	return EnvVars{
		port:       port,
		appName:    v.AppName,
		env:        env,
		logLevel:   strings.ToLower(strings.TrimSpace(v.LogLevel)),
		siteOrigin: strings.TrimRight(strings.TrimSpace(v.SiteOrigin), "/"),
		adminPath:  adminPath,
		trustProxy: v.TrustProxy,
	}
}

func (e EnvVars) GetPort() string {
	return e.port
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetEnv() string {
	return e.env
}

func (e EnvVars) GetLogLevel() string {
	return e.logLevel
}

// GetSiteOrigin returns the deployment origin (e.g. "https://example.com").
// Empty means the origin is derived from each request.
func (e EnvVars) GetSiteOrigin() string {
	return e.siteOrigin
}

// GetAdminPath is the admin UI path the OAuth callback redirects back to.
func (e EnvVars) GetAdminPath() string {
	return e.adminPath
}

// TrustProxy reports whether X-Forwarded-For comes from a trusted proxy.
func (e EnvVars) TrustProxy() bool {
	return e.trustProxy
}
