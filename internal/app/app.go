package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"reviewshelf/internal/store"
	"reviewshelf/pkg/auth"
	"reviewshelf/pkg/domain"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Redis       *redis.Client
	SessionTTL  time.Duration
	JWTSecret   string
	Store       store.Store
	Sessions    store.SessionStore
}

// App is the core application service wiring together storage, sessions
// and domain logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
}

// New constructs the application. When no store or session store is
// injected, Postgres and Redis (or stateless JWT) backends are built
// from the config.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.Redis != nil:
			sessionStore = store.NewRedisSessionStore(cfg.Redis, cfg.SessionTTL)
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (redis or jwtSecret)")
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
	}, nil
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Username        string
	Password        string
	ConfirmPassword string
}

// Register creates a local-credential user and signs it in. The
// password/confirmation mismatch is rejected before any store access.
func (a *App) Register(in RegisterInput) (domain.User, string, error) {
	if in.Password != in.ConfirmPassword {
		return domain.User{}, "", ErrPasswordMismatch
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return domain.User{}, "", ErrCredentialsRequired
	}
	taken, err := a.store.HasUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check username: %w", err)
	}
	if taken {
		return domain.User{}, "", ErrUsernameTaken
	}
	passwordHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user, err := a.store.SaveUser(domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// A concurrent registration can pass the pre-check and lose
		// the race at the unique index instead.
		if errors.Is(err, store.ErrDuplicateUser) {
			return domain.User{}, "", ErrUsernameTaken
		}
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// SignIn validates local credentials and issues a session token. A
// missing user and a wrong password produce the same error.
func (a *App) SignIn(username, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	user, ok, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// GoogleProfile is the subset of the OAuth userinfo payload the site
// needs to map an external identity onto a local user.
type GoogleProfile struct {
	Sub        string
	GivenName  string
	FamilyName string
}

// LoginWithGoogle resolves an external profile to a local user,
// creating one on first sight. Repeated logins with the same profile id
// never create duplicates.
func (a *App) LoginWithGoogle(p GoogleProfile) (domain.User, string, error) {
	if strings.TrimSpace(p.Sub) == "" {
		return domain.User{}, "", ErrCredentialsRequired
	}
	user, ok, err := a.store.GetUserByGoogleID(p.Sub)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		user, err = a.store.SaveUser(domain.User{
			FirstName: strings.TrimSpace(p.GivenName),
			LastName:  strings.TrimSpace(p.FamilyName),
			GoogleID:  p.Sub,
			CreatedAt: time.Now().UTC(),
		})
		if errors.Is(err, store.ErrDuplicateUser) {
			// Two first logins raced. The other one won, use its row.
			user, _, err = a.store.GetUserByGoogleID(p.Sub)
		}
		if err != nil {
			return domain.User{}, "", fmt.Errorf("save user: %w", err)
		}
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a session token. A token whose user no longer
// exists is treated as unauthenticated.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(userID)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// SignOut removes the session before the caller redirects.
func (a *App) SignOut(token string) error {
	return a.sessions.DeleteSession(token)
}
