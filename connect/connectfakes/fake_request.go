package connectfakes

import "github.com/oauthconnect/go-oauth-connect/connect"

var _ connect.RequestSource = (*FakeRequest)(nil)

// FakeRequest serves inbound parameters from two maps.
type FakeRequest struct {
	Post  map[string]string
	Query map[string]string
}

func (r *FakeRequest) PostParam(name string) string {
	return r.Post[name]
}

func (r *FakeRequest) QueryParam(name string) string {
	return r.Query[name]
}
