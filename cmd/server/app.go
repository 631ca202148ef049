package main

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/oauthconnect/go-oauth-connect/connect"
	"github.com/oauthconnect/go-oauth-connect/internal/config"
	"github.com/oauthconnect/go-oauth-connect/session"
	"github.com/oauthconnect/go-oauth-connect/session/memstore"
	"github.com/oauthconnect/go-oauth-connect/session/redisstore"
)

const sessionCookieName = "oauth_connect_sid"

// app is a minimal relying-party application demonstrating the connector:
// login redirect, provider callback, a user page, and logout.
type app struct {
	settings *config.Settings
	provider connect.Provider
	dest     connect.Destination
	logger   zerolog.Logger

	redisClient *redis.Client

	lock      sync.Mutex
	memstores map[string]*memstore.Store
}

func newApp(settings *config.Settings, oidcProvider connect.Provider, dest connect.Destination, logger zerolog.Logger) (*app, error) {
	a := &app{
		settings:  settings,
		provider:  oidcProvider,
		dest:      dest,
		logger:    logger,
		memstores: make(map[string]*memstore.Store),
	}
	if settings.RedisAddr != "" {
		a.redisClient = redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
	}
	return a, nil
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", a.homeHandler)
	mux.HandleFunc("/login", a.loginHandler)
	mux.HandleFunc("/oauth-callback", a.callbackHandler)
	mux.HandleFunc("/logout", a.logoutHandler)
	return mux
}

// storageFor returns the browser session's storage, minting a session cookie
// on first contact.
func (a *app) storageFor(w http.ResponseWriter, r *http.Request) session.Storage {
	var sessionID string
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		sessionID = cookie.Value
	} else {
		sessionID = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if a.redisClient != nil {
		return redisstore.New(r.Context(), a.redisClient, sessionID,
			redisstore.WithTTL(a.settings.SessionTTL),
			redisstore.WithLogger(a.logger))
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	store, ok := a.memstores[sessionID]
	if !ok {
		store = memstore.New()
		a.memstores[sessionID] = store
	}
	return store
}

func (a *app) connectorFor(w http.ResponseWriter, r *http.Request) (*connect.Connector, error) {
	return connect.New(a.provider, a.storageFor(w, r), connect.NewHTTPRequest(r), a.dest,
		connect.WithLogger(a.logger))
}

func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	connector, err := a.connectorFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	userID := connector.User(r.Context())
	if userID == "" {
		fmt.Fprint(w, `<p>Not connected. <a href="/login">Log in</a></p>`)
		return
	}

	fmt.Fprintf(w, "<p>Connected as %s.</p>", userID)
	if claims := connector.IDTokenClaims(r.Context()); claims != nil {
		fmt.Fprintf(w, "<p>email: %s</p>", claims.String("email"))
	}
	fmt.Fprint(w, `<p><a href="/logout">Log out</a></p>`)
}

func (a *app) loginHandler(w http.ResponseWriter, r *http.Request) {
	connector, err := a.connectorFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	authURL, err := connector.AuthorizationURL()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (a *app) callbackHandler(w http.ResponseWriter, r *http.Request) {
	connector, err := a.connectorFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// resolving the user drives the whole chain: state check, code
	// exchange, identity derivation
	userID := connector.User(r.Context())
	if userID == "" {
		a.logger.Warn().Msg("callback did not produce a connected user")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *app) logoutHandler(w http.ResponseWriter, r *http.Request) {
	connector, err := a.connectorFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if a.settings.ClearAllOnLogout {
		connector.DestroySession()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}
