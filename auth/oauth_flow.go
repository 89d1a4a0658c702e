package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/jrsteele09/wedding-site/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultUpstreamTimeout = 5 * time.Second

// Identity is the verified user profile returned by the identity provider.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityProvider is the third-party OAuth provider (Google in production).
type IdentityProvider interface {
	// AuthCodeURL is the consent page URL the browser is sent to.
	AuthCodeURL(state, redirectURI string) string
	// Exchange trades an authorization code for provider tokens.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	// UserInfo fetches the identity behind an access token.
	UserInfo(ctx context.Context, token *oauth2.Token) (*Identity, error)
}

// EmailAllowList decides which verified emails may administer the site.
type EmailAllowList interface {
	Contains(email string) bool
}

// CallbackParams is everything the provider redirect and the browser bring
// back to the callback endpoint.
type CallbackParams struct {
	Code        string
	State       string
	Error       string
	CookieState string
	RedirectURI string
	RemoteAddr  string
}

// OAuthFlow runs the delegated login: exchange the code, fetch the identity,
// check the allow-list and issue a site token. Each callback makes at most
// two sequential upstream calls and is never retried.
type OAuthFlow struct {
	provider IdentityProvider
	issuer   token.Issuer
	allowed  EmailAllowList
	timeout  time.Duration
	audit    AuditRepo
	now      func() time.Time
}

type FlowOption func(*OAuthFlow)

// WithUpstreamTimeout bounds the whole callback pipeline.
func WithUpstreamTimeout(d time.Duration) FlowOption {
	return func(f *OAuthFlow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithAudit records every completed callback.
func WithAudit(repo AuditRepo) FlowOption {
	return func(f *OAuthFlow) {
		f.audit = repo
	}
}

func NewOAuthFlow(provider IdentityProvider, issuer token.Issuer, allowed EmailAllowList, opts ...FlowOption) *OAuthFlow {
	f := &OAuthFlow{
		provider: provider,
		issuer:   issuer,
		allowed:  allowed,
		timeout:  defaultUpstreamTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin starts a login attempt. The returned state must be stored in the
// browser (cookie) and compared on callback.
func (f *OAuthFlow) Begin(redirectURI string) (state, authURL string) {
	state = uuid.NewString()
	return state, f.provider.AuthCodeURL(state, redirectURI)
}

// Complete handles the provider callback. On success it returns a site token;
// otherwise the error is a *DeniedError carrying the reason.
func (f *OAuthFlow) Complete(ctx context.Context, p CallbackParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	tok, identity, err := f.run(ctx, p)
	f.record(ctx, p, identity, err)
	return tok, err
}

func (f *OAuthFlow) run(ctx context.Context, p CallbackParams) (string, *Identity, error) {
	code, err := checkCallback(p)
	if err != nil {
		return "", nil, err
	}

	providerToken, err := f.exchange(ctx, code, p.RedirectURI)
	if err != nil {
		return "", nil, err
	}

	identity, err := f.fetchIdentity(ctx, providerToken)
	if err != nil {
		return "", nil, err
	}

	tok, err := f.authorizeIdentity(identity)
	return tok, identity, err
}

// checkCallback validates the redirect parameters and the CSRF state.
func checkCallback(p CallbackParams) (string, error) {
	if p.Error != "" {
		return "", denied(ReasonAccessDenied, errors.New(p.Error))
	}
	if p.Code == "" || p.State == "" {
		return "", denied(ReasonMissingParams, nil)
	}
	if p.CookieState == "" || subtle.ConstantTimeCompare([]byte(p.CookieState), []byte(p.State)) != 1 {
		return "", denied(ReasonInvalidState, nil)
	}
	return p.Code, nil
}

func (f *OAuthFlow) exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	t, err := f.provider.Exchange(ctx, code, redirectURI)
	if err != nil {
		log.Err(err).Msg("OAuth token exchange failed")
		return nil, denied(ReasonTokenExchangeFailed, errors.Wrapf(errors.ErrUpstream, "exchange: %v", err))
	}
	return t, nil
}

func (f *OAuthFlow) fetchIdentity(ctx context.Context, t *oauth2.Token) (*Identity, error) {
	id, err := f.provider.UserInfo(ctx, t)
	if err != nil {
		log.Err(err).Msg("OAuth userinfo fetch failed")
		return nil, denied(ReasonUserInfoFailed, errors.Wrapf(errors.ErrUpstream, "userinfo: %v", err))
	}
	if id == nil {
		return nil, denied(ReasonUserInfoFailed, errors.New("empty identity"))
	}
	return id, nil
}

func (f *OAuthFlow) authorizeIdentity(id *Identity) (string, error) {
	if !id.EmailVerified {
		return "", denied(ReasonEmailNotVerified, nil)
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" || !f.allowed.Contains(email) {
		log.Warn().Str("email", email).Msg("Unauthorized email attempted admin login")
		return "", denied(ReasonNotAuthorized, nil)
	}

	// Same secret and format as the password login, so tokens are interchangeable.
	tok, err := f.issuer.Issue(token.Claims{"sub": email})
	if err != nil {
		log.Err(err).Msg("Failed to issue admin token")
		return "", denied(ReasonServerError, err)
	}
	return tok, nil
}

func (f *OAuthFlow) record(ctx context.Context, p CallbackParams, id *Identity, err error) {
	if f.audit == nil {
		return
	}
	attempt := LoginAttempt{
		Method:     LoginMethodGoogle,
		Success:    err == nil,
		RemoteAddr: p.RemoteAddr,
		CreatedAt:  f.now().UTC(),
	}
	if id != nil {
		attempt.Email = strings.ToLower(strings.TrimSpace(id.Email))
	}
	if err != nil {
		attempt.Reason = string(ReasonOf(err))
	}
	// The pipeline context may already be spent on a slow upstream.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if auditErr := f.audit.RecordLoginAttempt(ctx, attempt); auditErr != nil {
		log.Err(auditErr).Msg("Failed to record login attempt")
	}
}
