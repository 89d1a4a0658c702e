package config

import (
	"sort"
	"strings"
	"time"
)

type OAuthConfig interface {
	GoogleEnabled() bool
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleAuthURL() string
	GetGoogleTokenURL() string
	GetGoogleUserInfoURL() string
	GetAllowedAdminEmails() EmailAllowList
	GetUpstreamTimeout() time.Duration
}

// EmailAllowList is a read-only set of lowercased admin emails.
type EmailAllowList map[string]struct{}

// Contains matches case-insensitively.
func (l EmailAllowList) Contains(email string) bool {
	_, ok := l[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (l EmailAllowList) String() string {
	emails := make([]string, 0, len(l))
	for e := range l {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return strings.Join(emails, ",")
}

type OAuth struct {
	clientID        string
	clientSecret    string
	authURL         string
	tokenURL        string
	userInfoURL     string
	allowedEmails   EmailAllowList
	upstreamTimeout time.Duration
}

var _ OAuthConfig = OAuth{}

func newOAuth(v Values) OAuth {
	allowed := EmailAllowList{}
	for _, e := range trimCSV(v.AllowedAdminEmails) {
		allowed[strings.ToLower(e)] = nullValue{}
	}
	timeout := v.UpstreamTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return OAuth{
		clientID:        strings.TrimSpace(v.GoogleClientID),
		clientSecret:    v.GoogleClientSecret,
		authURL:         v.GoogleAuthURL,
		tokenURL:        v.GoogleTokenURL,
		userInfoURL:     v.GoogleUserInfoURL,
		allowedEmails:   allowed,
		upstreamTimeout: timeout,
	}
}

func (o OAuth) GoogleEnabled() bool {
	return o.clientID != ""
}

func (o OAuth) GetGoogleClientID() string {
	return o.clientID
}

func (o OAuth) GetGoogleClientSecret() string {
	return o.clientSecret
}

func (o OAuth) GetGoogleAuthURL() string {
	return o.authURL
}

func (o OAuth) GetGoogleTokenURL() string {
	return o.tokenURL
}

func (o OAuth) GetGoogleUserInfoURL() string {
	return o.userInfoURL
}

func (o OAuth) GetAllowedAdminEmails() EmailAllowList {
	return o.allowedEmails
}

// GetUpstreamTimeout bounds each call to the identity provider.
func (o OAuth) GetUpstreamTimeout() time.Duration {
	return o.upstreamTimeout
}
