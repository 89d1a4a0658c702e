package google

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/wedding-site/auth"
	"github.com/jrsteele09/wedding-site/internal/config"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"golang.org/x/oauth2"
)

const (
	issuerURL = "https://accounts.google.com"
	jwksURL   = "https://www.googleapis.com/oauth2/v3/certs"

	promptSelectAccount = "select_account"
)

var _ auth.IdentityProvider = (*Provider)(nil)

// Provider talks to Google's OAuth endpoints. Endpoints come from
// configuration so tests and staging can point elsewhere; no discovery call
// is made at startup.
type Provider struct {
	oauth  oauth2.Config
	oidc   *oidc.Provider
	client *http.Client
}

// New builds a provider from configuration. httpClient may be nil.
func New(cfg config.OAuthConfig, httpClient *http.Client) (*Provider, error) {
	if !cfg.GoogleEnabled() {
		return nil, errors.Wrapf(errors.ErrConfiguration, "google client id is not configured")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetUpstreamTimeout()}
	}

	providerConfig := &oidc.ProviderConfig{
		IssuerURL:   issuerURL,
		AuthURL:     cfg.GetGoogleAuthURL(),
		TokenURL:    cfg.GetGoogleTokenURL(),
		UserInfoURL: cfg.GetGoogleUserInfoURL(),
		JWKSURL:     jwksURL,
	}

	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.GetGoogleAuthURL(),
				TokenURL:  cfg.GetGoogleTokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{oidc.ScopeOpenID, "email", "profile"},
		},
		oidc:   providerConfig.NewProvider(oidc.ClientContext(context.Background(), httpClient)),
		client: httpClient,
	}, nil
}

func (p *Provider) config(redirectURI string) *oauth2.Config {
	c := p.oauth
	c.RedirectURL = redirectURI
	return &c
}

func (p *Provider) AuthCodeURL(state, redirectURI string) string {
	return p.config(redirectURI).AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", promptSelectAccount))
}

func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	ctx = oidc.ClientContext(ctx, p.client)
	t, err := p.config(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrapf(err, "[google Exchange] code exchange failed")
	}
	return t, nil
}

func (p *Provider) UserInfo(ctx context.Context, t *oauth2.Token) (*auth.Identity, error) {
	ctx = oidc.ClientContext(ctx, p.client)
	info, err := p.oidc.UserInfo(ctx, oauth2.StaticTokenSource(t))
	if err != nil {
		return nil, errors.Wrapf(err, "[google UserInfo] userinfo request failed")
	}

	var profile struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := info.Claims(&profile); err != nil {
		return nil, errors.Wrapf(err, "[google UserInfo] failed to decode profile")
	}

	return &auth.Identity{
		Subject:       info.Subject,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          profile.Name,
		Picture:       profile.Picture,
	}, nil
}
