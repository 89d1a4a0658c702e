package auth_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/wedding-site/auth"
	fakeauditrepo "github.com/jrsteele09/wedding-site/auth/repofakes"
	"github.com/jrsteele09/wedding-site/internal/config"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/jrsteele09/wedding-site/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testRedirectURI = "https://wedding.example.com/api/admin/auth/callback"
	testCode        = "auth-code-1"
	testState       = "state-1"
)

type fakeProvider struct {
	identity    *auth.Identity
	exchangeErr error
	userInfoErr error
	delay       time.Duration

	mu        sync.Mutex
	exchanges int
	userInfos int
	codes     []string
}

func (p *fakeProvider) AuthCodeURL(state, redirectURI string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("redirect_uri", redirectURI)
	return "https://idp.example.com/auth?" + q.Encode()
}

func (p *fakeProvider) Exchange(ctx context.Context, code, _ string) (*oauth2.Token, error) {
	p.mu.Lock()
	p.exchanges++
	p.codes = append(p.codes, code)
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func (p *fakeProvider) UserInfo(_ context.Context, _ *oauth2.Token) (*auth.Identity, error) {
	p.mu.Lock()
	p.userInfos++
	p.mu.Unlock()

	if p.userInfoErr != nil {
		return nil, p.userInfoErr
	}
	return p.identity, nil
}

type flowFixture struct {
	provider *fakeProvider
	signer   *token.HMACSigner
	audit    *fakeauditrepo.FakeAuditRepo
	flow     *auth.OAuthFlow
}

func newFlowFixture(provider *fakeProvider, opts ...auth.FlowOption) *flowFixture {
	signer := token.NewHMACSigner(secretStr)
	audit := fakeauditrepo.NewFakeAuditRepo()
	allowed := config.EmailAllowList{"admin@example.com": {}}
	opts = append([]auth.FlowOption{auth.WithAudit(audit)}, opts...)
	return &flowFixture{
		provider: provider,
		signer:   signer,
		audit:    audit,
		flow:     auth.NewOAuthFlow(provider, signer, allowed, opts...),
	}
}

func validParams() auth.CallbackParams {
	return auth.CallbackParams{
		Code:        testCode,
		State:       testState,
		CookieState: testState,
		RedirectURI: testRedirectURI,
		RemoteAddr:  "203.0.113.7",
	}
}

func verifiedAdmin() *auth.Identity {
	return &auth.Identity{Subject: "42", Email: "Admin@Example.com", EmailVerified: true}
}

func TestOAuthFlow_Begin(t *testing.T) {
	fx := newFlowFixture(&fakeProvider{})

	state1, authURL := fx.flow.Begin(testRedirectURI)
	state2, _ := fx.flow.Begin(testRedirectURI)
	require.NotEmpty(t, state1)
	require.NotEqual(t, state1, state2)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	require.Equal(t, state1, u.Query().Get("state"))
	require.Equal(t, testRedirectURI, u.Query().Get("redirect_uri"))
}

func TestOAuthFlow_Success(t *testing.T) {
	fx := newFlowFixture(&fakeProvider{identity: verifiedAdmin()})

	before := time.Now()
	tok, err := fx.flow.Complete(context.Background(), validParams())
	require.NoError(t, err)
	require.True(t, fx.signer.Verify(tok))

	claims, ok := fx.signer.Claims(tok)
	require.True(t, ok)
	require.Equal(t, token.RoleAdmin, claims["role"])
	require.Equal(t, "admin@example.com", claims["sub"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	require.InDelta(t, before.Add(24*time.Hour).Unix(), exp.Unix(), 2)

	require.Equal(t, 1, fx.provider.exchanges)
	require.Equal(t, []string{testCode}, fx.provider.codes)
	require.Equal(t, 1, fx.provider.userInfos)

	attempts := fx.audit.Attempts()
	require.Len(t, attempts, 1)
	require.Equal(t, auth.LoginMethodGoogle, attempts[0].Method)
	require.True(t, attempts[0].Success)
	require.Equal(t, "admin@example.com", attempts[0].Email)
	require.Equal(t, "203.0.113.7", attempts[0].RemoteAddr)
	require.Empty(t, attempts[0].Reason)
}

func TestOAuthFlow_Denials(t *testing.T) {
	tests := []struct {
		name          string
		provider      *fakeProvider
		params        func(p *auth.CallbackParams)
		reason        auth.Reason
		wantExchanges int
		wantUserInfos int
	}{
		{
			name:     "provider error",
			provider: &fakeProvider{identity: verifiedAdmin()},
			params:   func(p *auth.CallbackParams) { p.Error = "access_denied" },
			reason:   auth.ReasonAccessDenied,
		},
		{
			name:     "provider error wins over valid code",
			provider: &fakeProvider{identity: verifiedAdmin()},
			params:   func(p *auth.CallbackParams) { p.Error = "temporarily_unavailable" },
			reason:   auth.ReasonAccessDenied,
		},
		{
			name:     "missing code",
			provider: &fakeProvider{identity: verifiedAdmin()},
			params:   func(p *auth.CallbackParams) { p.Code = "" },
			reason:   auth.ReasonMissingParams,
		},
		{
			name:     "missing state",
			provider: &fakeProvider{identity: verifiedAdmin()},
			params:   func(p *auth.CallbackParams) { p.State = "" },
			reason:   auth.ReasonMissingParams,
		},
		{
			name:     "missing cookie",
			provider: &fakeProvider{identity: verifiedAdmin()},
			params:   func(p *auth.CallbackParams) { p.CookieState = "" },
			reason:   auth.ReasonInvalidState,
		},
		{
			name:     "state mismatch",
			provider: &fakeProvider{identity: verifiedAdmin()},
			params:   func(p *auth.CallbackParams) { p.CookieState = "other-state" },
			reason:   auth.ReasonInvalidState,
		},
		{
			name:          "exchange failure",
			provider:      &fakeProvider{exchangeErr: errors.New("400 invalid_grant")},
			reason:        auth.ReasonTokenExchangeFailed,
			wantExchanges: 1,
		},
		{
			name:          "userinfo failure",
			provider:      &fakeProvider{userInfoErr: errors.New("500")},
			reason:        auth.ReasonUserInfoFailed,
			wantExchanges: 1,
			wantUserInfos: 1,
		},
		{
			name:          "email not verified",
			provider:      &fakeProvider{identity: &auth.Identity{Email: "admin@example.com"}},
			reason:        auth.ReasonEmailNotVerified,
			wantExchanges: 1,
			wantUserInfos: 1,
		},
		{
			name:          "email not allowed",
			provider:      &fakeProvider{identity: &auth.Identity{Email: "guest@example.com", EmailVerified: true}},
			reason:        auth.ReasonNotAuthorized,
			wantExchanges: 1,
			wantUserInfos: 1,
		},
		{
			name:          "empty email",
			provider:      &fakeProvider{identity: &auth.Identity{EmailVerified: true}},
			reason:        auth.ReasonNotAuthorized,
			wantExchanges: 1,
			wantUserInfos: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFlowFixture(tc.provider)
			params := validParams()
			if tc.params != nil {
				tc.params(&params)
			}

			tok, err := fx.flow.Complete(context.Background(), params)
			require.Error(t, err)
			require.Empty(t, tok)
			require.Equal(t, tc.reason, auth.ReasonOf(err))

			var denied *auth.DeniedError
			require.ErrorAs(t, err, &denied)

			require.Equal(t, tc.wantExchanges, tc.provider.exchanges)
			require.Equal(t, tc.wantUserInfos, tc.provider.userInfos)

			attempts := fx.audit.Attempts()
			require.Len(t, attempts, 1)
			require.False(t, attempts[0].Success)
			require.Equal(t, string(tc.reason), attempts[0].Reason)
		})
	}
}

func TestOAuthFlow_UpstreamErrorsWrapped(t *testing.T) {
	fx := newFlowFixture(&fakeProvider{exchangeErr: errors.New("connection refused")})
	_, err := fx.flow.Complete(context.Background(), validParams())
	require.ErrorIs(t, err, errors.ErrUpstream)
}

func TestOAuthFlow_UpstreamTimeout(t *testing.T) {
	provider := &fakeProvider{identity: verifiedAdmin(), delay: time.Second}
	fx := newFlowFixture(provider, auth.WithUpstreamTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := fx.flow.Complete(context.Background(), validParams())
	require.Less(t, time.Since(start), 500*time.Millisecond)
	require.Equal(t, auth.ReasonTokenExchangeFailed, auth.ReasonOf(err))

	// Recorded even though the pipeline deadline has passed.
	require.Len(t, fx.audit.Attempts(), 1)
}

func TestOAuthFlow_AuditFailureDoesNotBlockLogin(t *testing.T) {
	fx := newFlowFixture(&fakeProvider{identity: verifiedAdmin()})
	fx.audit.FailWith(errors.New("disk full"))

	tok, err := fx.flow.Complete(context.Background(), validParams())
	require.NoError(t, err)
	require.True(t, fx.signer.Verify(tok))
}

func TestOAuthFlow_TokensInterchangeableWithPasswordLogin(t *testing.T) {
	fx := newFlowFixture(&fakeProvider{identity: verifiedAdmin()})
	oauthTok, err := fx.flow.Complete(context.Background(), validParams())
	require.NoError(t, err)

	pwTok, err := auth.NewPasswordLogin("pw", "", fx.signer).Login("pw")
	require.NoError(t, err)

	gate := auth.NewGate(token.NewHMACSigner(secretStr))
	for _, tok := range []string{oauthTok, pwTok} {
		h := map[string][]string{"Authorization": {"Bearer " + tok}}
		require.True(t, gate.Authorize(h).Allowed)
	}
}

func TestReasonOf_NonDenial(t *testing.T) {
	require.Equal(t, auth.ReasonServerError, auth.ReasonOf(errors.New("x")))
}
