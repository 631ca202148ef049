package session

import (
	"encoding/json"

	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

// Session store keys. The layout is a flat mapping per browser session.
const (
	keyCode         = "code"
	keyState        = "state"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyTokenPayload = "token_payload"
	keyUserID       = "user_id"
)

// failedPayload marks an ID-token verification that ran and failed, so the
// attempt is not repeated for the same token.
const failedPayload = "null"

// Record is the typed view over a Storage, giving the connector named fields
// instead of ad-hoc key access.
type Record struct {
	store Storage
}

func NewRecord(store Storage) *Record {
	return &Record{store: store}
}

// Code is the last authorization code successfully exchanged, kept so the
// same code is never exchanged twice.
func (r *Record) Code() string {
	v, _ := r.store.Get(keyCode)
	return v
}

func (r *Record) SetCode(code string) { r.store.Set(keyCode, code) }
func (r *Record) ClearCode()          { r.store.Delete(keyCode) }

// State is the pending single-use CSRF nonce.
func (r *Record) State() string {
	v, _ := r.store.Get(keyState)
	return v
}

func (r *Record) SetState(state string) { r.store.Set(keyState, state) }
func (r *Record) ClearState()           { r.store.Delete(keyState) }

func (r *Record) RefreshToken() string {
	v, _ := r.store.Get(keyRefreshToken)
	return v
}

func (r *Record) SetRefreshToken(token string) { r.store.Set(keyRefreshToken, token) }
func (r *Record) ClearRefreshToken()           { r.store.Delete(keyRefreshToken) }

// AccessToken returns the persisted token, or nil when none is stored or the
// stored value does not parse.
func (r *Record) AccessToken() *oauth2.AccessToken {
	raw, ok := r.store.Get(keyAccessToken)
	if !ok || raw == "" {
		return nil
	}
	token, err := oauth2.ParseAccessToken([]byte(raw))
	if err != nil {
		return nil
	}
	return token
}

func (r *Record) SetAccessToken(token *oauth2.AccessToken) {
	r.store.Set(keyAccessToken, string(token.JSON()))
}

func (r *Record) ClearAccessToken() { r.store.Delete(keyAccessToken) }

// TokenPayload returns the cached verified ID-token claims and whether
// verification has already been attempted for the current token. A nil claims
// value with attempted=true means verification ran and failed.
func (r *Record) TokenPayload() (oauth2.Claims, bool) {
	raw, ok := r.store.Get(keyTokenPayload)
	if !ok || raw == "" {
		return nil, false
	}
	if raw == failedPayload {
		return nil, true
	}
	var claims oauth2.Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, false
	}
	return claims, true
}

// SetTokenPayload caches a verification outcome. Passing nil records a
// failed verification so it is not retried for the same token.
func (r *Record) SetTokenPayload(claims oauth2.Claims) {
	if claims == nil {
		r.store.Set(keyTokenPayload, failedPayload)
		return
	}
	data, err := json.Marshal(claims)
	if err != nil {
		r.store.Set(keyTokenPayload, failedPayload)
		return
	}
	r.store.Set(keyTokenPayload, string(data))
}

func (r *Record) ClearTokenPayload() { r.store.Delete(keyTokenPayload) }

// UserID is the cached resolved identity; empty string means no user.
func (r *Record) UserID() string {
	v, _ := r.store.Get(keyUserID)
	return v
}

func (r *Record) SetUserID(id string) { r.store.Set(keyUserID, id) }

// ClearAll destroys every field of the session record.
func (r *Record) ClearAll() { r.store.ClearAll() }
