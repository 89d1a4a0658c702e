package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/wedding-site/auth"
	"github.com/jrsteele09/wedding-site/auth/google"
	"github.com/jrsteele09/wedding-site/images"
	"github.com/jrsteele09/wedding-site/internal/config"
	"github.com/jrsteele09/wedding-site/rsvps"
	"github.com/jrsteele09/wedding-site/siteconfig"
	"github.com/jrsteele09/wedding-site/token"
	"github.com/rs/zerolog/log"
)

// Repos are the stores behind the API. Audit may be nil.
type Repos struct {
	SiteConfig siteconfig.Repo
	RSVPs      rsvps.Repo
	Images     images.Repo
	Audit      auth.AuditRepo
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	repos   Repos

	signer        *token.HMACSigner
	gate          *auth.Gate
	passwordLogin *auth.PasswordLogin
	oauth         *auth.OAuthFlow // nil when Google sign-in is not configured
}

type Option func(*options)

type options struct {
	provider auth.IdentityProvider
}

// WithIdentityProvider replaces the Google provider built from configuration.
func WithIdentityProvider(p auth.IdentityProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

func New(cfg config.Config, repos Repos, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	signer := token.NewHMACSigner(cfg.GetAuthSecret(), token.WithTTL(cfg.GetTokenTTL()))

	s := &Server{
		env:           cfg.GetEnv(),
		mux:           http.NewServeMux(),
		config:        cfg,
		repos:         repos,
		signer:        signer,
		gate:          auth.NewGate(signer),
		passwordLogin: auth.NewPasswordLogin(cfg.GetAdminPassword(), cfg.GetAdminPasswordHash(), signer),
	}

	provider := o.provider
	if provider == nil && cfg.GoogleEnabled() {
		p, err := google.New(cfg, nil)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to create google provider: %w", err)
		}
		provider = p
	}
	if provider != nil {
		s.oauth = auth.NewOAuthFlow(provider, signer, cfg.GetAllowedAdminEmails(),
			auth.WithUpstreamTimeout(cfg.GetUpstreamTimeout()),
			auth.WithAudit(repos.Audit),
		)
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.APIMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		padding := strings.Repeat(" ", max(0, 6-len(method)))
		log.Debug().Msgf("[%s%s] %s", colourMethod(method), padding, path)
	}
}
