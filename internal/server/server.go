package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"reviewshelf/internal/app"
	"reviewshelf/internal/oauth"
	"reviewshelf/internal/ratelimit"
	"reviewshelf/internal/util"
	"reviewshelf/pkg/domain"
)

const (
	sessionCookieName = "session"
	stateCookieName   = "oauthstate"

	// The message and status the site has always used for requests
	// against protected routes without a valid session.
	unauthorizedMessage = "Unauthorised request"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App             *app.App
	OAuth           *oauth.Client
	SecureCookies   bool
	SignInLimiter   *ratelimit.FixedWindowLimiter
	RegisterLimiter *ratelimit.FixedWindowLimiter
	TrustedProxies  *util.TrustedProxies
}

// Server exposes the site's HTTP endpoints.
type Server struct {
	app             *app.App
	oauth           *oauth.Client
	secureCookies   bool
	signinLimiter   *ratelimit.FixedWindowLimiter
	registerLimiter *ratelimit.FixedWindowLimiter
	trustedProxies  *util.TrustedProxies
	mux             *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:             cfg.App,
		oauth:           cfg.OAuth,
		secureCookies:   cfg.SecureCookies,
		signinLimiter:   cfg.SignInLimiter,
		registerLimiter: cfg.RegisterLimiter,
		trustedProxies:  cfg.TrustedProxies,
		mux:             http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped with the ambient
// middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithCORS(util.WithSecurityHeaders(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// public pages
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/reviews", s.handleReviews)
	s.mux.HandleFunc("/view", s.handleView)

	// account
	s.mux.HandleFunc("/signin", s.handleSignIn)
	s.mux.HandleFunc("/register", s.handleRegister)
	s.mux.HandleFunc("/signout", s.handleSignOut)
	s.mux.HandleFunc("/auth/google", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/home", s.handleGoogleCallback)

	// authoring
	s.mux.Handle("/create", s.authenticated(s.handleCreate))
	s.mux.Handle("/save", s.authenticated(s.handleSave))
	s.mux.Handle("/delete", s.authenticated(s.handleDelete))
	s.mux.Handle("/publish", s.authenticated(s.handlePublish))
	s.mux.Handle("/edit", s.authenticated(s.handleEdit))
	s.mux.Handle("/myposts", s.authenticated(s.handleMyPosts))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	_, signedIn := s.authorize(r)
	result, err := s.app.Feed(app.FeedQuery{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeView(w, http.StatusOK, "index", map[string]any{
		"signedIn": signedIn,
		"reviews":  result.Reviews,
	})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			// Historic behavior: protected routes report 404, not 401.
			writeError(w, http.StatusNotFound, unauthorizedMessage)
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return domain.User{}, false
	}
	return s.app.UserFromToken(cookie.Value)
}

// account handlers

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeView(w, http.StatusOK, "signin", nil)
	case http.MethodPost:
		if !s.allow(s.signinLimiter, r) {
			writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later")
			return
		}
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		_, token, err := s.app.SignIn(r.PostFormValue("username"), r.PostFormValue("password"))
		if err != nil {
			// The form is re-rendered with the failure message for
			// every cause, including store errors.
			writeView(w, http.StatusUnauthorized, "signin", map[string]any{
				"message": app.ErrInvalidCredentials.Error(),
			})
			return
		}
		s.setSessionCookie(w, token)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeView(w, http.StatusOK, "register", nil)
	case http.MethodPost:
		if !s.allow(s.registerLimiter, r) {
			writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later")
			return
		}
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		// Field names predate this rewrite and are what the deployed
		// registration form submits.
		_, token, err := s.app.Register(app.RegisterInput{
			FirstName:       r.PostFormValue("fName"),
			LastName:        r.PostFormValue("lName"),
			Username:        r.PostFormValue("username"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("repassword"),
		})
		switch {
		case err == nil:
			s.setSessionCookie(w, token)
			http.Redirect(w, r, "/", http.StatusSeeOther)
		case isUserError(err):
			writeView(w, http.StatusUnprocessableEntity, "register", map[string]any{
				"message": err.Error(),
			})
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.app.SignOut(cookie.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.oauth == nil || !s.oauth.Enabled() {
		http.NotFound(w, r)
		return
	}
	state := oauth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.oauth == nil || !s.oauth.Enabled() {
		http.NotFound(w, r)
		return
	}
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}
	profile, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("google exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "sign-in with Google failed")
		return
	}
	_, token, err := s.app.LoginWithGoogle(app.GoogleProfile{
		Sub:        profile.Sub,
		GivenName:  profile.GivenName,
		FamilyName: profile.FamilyName,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// allow consults the limiter keyed by client IP. A nil limiter means
// throttling is disabled.
func (s *Server) allow(l *ratelimit.FixedWindowLimiter, r *http.Request) bool {
	if l == nil {
		return true
	}
	return l.Allow(util.ClientIP(r, s.trustedProxies))
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// isUserError reports whether err carries a message meant for the
// person filling in the form.
func isUserError(err error) bool {
	return errors.Is(err, app.ErrPasswordMismatch) ||
		errors.Is(err, app.ErrUsernameTaken) ||
		errors.Is(err, app.ErrCredentialsRequired) ||
		errors.Is(err, app.ErrInvalidCredentials)
}

func decodeJSONBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeView responds with the named page and its data. The client
// renders the page; the server only names it.
func writeView(w http.ResponseWriter, status int, view string, data map[string]any) {
	payload := map[string]any{"view": view}
	for k, v := range data {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
