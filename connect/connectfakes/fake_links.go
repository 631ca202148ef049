package connectfakes

import (
	"net/url"

	"github.com/oauthconnect/go-oauth-connect/connect"
)

var _ connect.LinkBuilder = (*FakeLinkBuilder)(nil)

// FakeLinkBuilder resolves endpoints to a canned base URL and records the
// arguments it was asked to resolve with.
type FakeLinkBuilder struct {
	BaseURL          string
	PersistentParams map[string]string
	ResolveErr       error

	LastEndpoint   string
	LastPositional []string
	LastNamed      map[string]string
}

func (l *FakeLinkBuilder) Resolve(endpoint string, positional []string, named map[string]string) (*url.URL, error) {
	l.LastEndpoint = endpoint
	l.LastPositional = positional
	l.LastNamed = named
	if l.ResolveErr != nil {
		return nil, l.ResolveErr
	}
	resolved, err := url.Parse(l.BaseURL)
	if err != nil {
		return nil, err
	}
	query := resolved.Query()
	for name, value := range named {
		query.Set(name, value)
	}
	resolved.RawQuery = query.Encode()
	return resolved, nil
}

func (l *FakeLinkBuilder) CurrentPersistentParams() map[string]string {
	return l.PersistentParams
}
