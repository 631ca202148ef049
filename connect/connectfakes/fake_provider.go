// Package connectfakes provides hand-written fakes for the capabilities the
// connector consumes, scripted per test.
package connectfakes

import (
	"context"
	"net/url"
	"sync"

	"github.com/oauthconnect/go-oauth-connect/connect"
	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

var _ connect.Provider = (*FakeProvider)(nil)

// FakeProvider returns scripted responses and records call counts.
type FakeProvider struct {
	lock sync.Mutex

	AuthURL string

	ExchangeToken *oauth2.AccessToken
	ExchangeErr   error
	ExchangeCalls int
	LastCode      string
	LastRedirect  string

	RefreshJSON  []byte
	RefreshErr   error
	RefreshCalls int
	LastRefresh  string

	Claims      oauth2.Claims
	VerifyErr   error
	VerifyCalls int

	Profile      *oauth2.Profile
	ProfileErr   error
	ProfileCalls int
}

func (p *FakeProvider) AuthCodeURL(state, redirectURI string) string {
	return p.AuthURL + "?state=" + url.QueryEscape(state) + "&redirect_uri=" + url.QueryEscape(redirectURI)
}

func (p *FakeProvider) ExchangeCode(_ context.Context, code, redirectURI string) (*oauth2.AccessToken, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ExchangeCalls++
	p.LastCode = code
	p.LastRedirect = redirectURI
	if p.ExchangeErr != nil {
		return nil, p.ExchangeErr
	}
	token := *p.ExchangeToken
	return &token, nil
}

func (p *FakeProvider) Refresh(_ context.Context, refreshToken string) ([]byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.RefreshCalls++
	p.LastRefresh = refreshToken
	if p.RefreshErr != nil {
		return nil, p.RefreshErr
	}
	return p.RefreshJSON, nil
}

func (p *FakeProvider) VerifyIDToken(_ context.Context, _ *oauth2.AccessToken) (oauth2.Claims, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.VerifyCalls++
	if p.VerifyErr != nil {
		return nil, p.VerifyErr
	}
	return p.Claims, nil
}

func (p *FakeProvider) FetchProfile(_ context.Context, _ *oauth2.AccessToken) (*oauth2.Profile, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ProfileCalls++
	if p.ProfileErr != nil {
		return nil, p.ProfileErr
	}
	return p.Profile, nil
}
