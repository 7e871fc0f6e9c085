// Package auth is the access gate: it turns credentials into signed tokens,
// tokens into caller identities, and owns account registration.
package auth

import (
	"context"
	"time"

	"github.com/campus-hub/course-registry/internal/domain/shared"
	"github.com/campus-hub/course-registry/internal/domain/user"
	"github.com/campus-hub/course-registry/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrInvalidCredentials = shared.NewDomainError("auth", "Login", shared.KindUnauthorized, "Invalid credentials")
	ErrTokenMissing       = shared.NewDomainError("auth", "Authenticate", shared.KindUnauthorized, "Token not provided")
	ErrTokenInvalid       = shared.NewDomainError("auth", "Authenticate", shared.KindUnauthorized, "Invalid token")
)

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Config holds the gate settings.
type Config struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Session is the result of a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// Gate authenticates callers.
type Gate struct {
	users      user.Repository
	revoked    RevocationStore
	tokens     *Tokens
	prePersist user.PrePersist
	now        func() time.Time
	logger     *logger.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate wires a gate. The pre-persist pipeline is built from cfg.BcryptCost.
func NewGate(users user.Repository, revoked RevocationStore, cfg Config, opts ...Option) (*Gate, error) {
	g := &Gate{
		users:   users,
		revoked: revoked,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	tokens, err := NewTokens(cfg.Secret, cfg.Issuer, cfg.TokenTTL, g.now)
	if err != nil {
		return nil, err
	}
	g.tokens = tokens
	g.prePersist = user.DefaultPrePersist(cfg.BcryptCost)
	g.logger = g.logger.With(logger.Component("auth"))
	return g, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

// Login checks credentials and issues a token. Unknown logins and wrong
// passwords fail with the same error.
func (g *Gate) Login(ctx context.Context, login, password string) (*Session, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := g.users.FindByLogin(ctx, login)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, shared.WrapError("auth", "Login", shared.KindInternal, "could not load user", err)
	}
	if !u.CheckPassword(password) {
		g.logger.Warn("login rejected", logger.UserID(u.ID))
		return nil, ErrInvalidCredentials
	}

	token, claims, err := g.tokens.Issue(u)
	if err != nil {
		return nil, shared.WrapError("auth", "Login", shared.KindInternal, "could not issue token", err)
	}

	g.logger.Info("login", logger.UserID(u.ID), logger.Role(string(u.Role)))
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// Authenticate resolves a bearer token into the caller identity.
func (g *Gate) Authenticate(ctx context.Context, raw string) (user.Identity, error) {
	if raw == "" {
		return user.Identity{}, ErrTokenMissing
	}

	claims, err := g.tokens.Parse(raw)
	if err != nil {
		return user.Identity{}, shared.WrapError("auth", "Authenticate", shared.KindUnauthorized, ErrTokenInvalid.Message, err)
	}

	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return user.Identity{}, shared.WrapError("auth", "Authenticate", shared.KindInternal, "could not check token", err)
		}
		if revoked {
			return user.Identity{}, ErrTokenInvalid
		}
	}

	return user.Identity{
		UserID:    claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the caller's token until it would have expired.
func (g *Gate) Logout(ctx context.Context, caller user.Identity) error {
	if caller.TokenID == "" {
		return ErrTokenInvalid.WithOp("Logout")
	}
	if g.revoked == nil {
		return nil
	}
	if err := g.revoked.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return shared.WrapError("auth", "Logout", shared.KindInternal, "could not revoke token", err)
	}
	g.logger.Info("logout", logger.UserID(caller.UserID))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNTS
// ══════════════════════════════════════════════════════════════════════════════

// Register creates an account. The password is hashed before storage.
func (g *Gate) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	u, err := user.New(in, g.now())
	if err != nil {
		return nil, err
	}

	if err := g.prePersist.Apply(ctx, u); err != nil {
		return nil, shared.WrapError("user", "Register", shared.KindInternal, "could not prepare user", err)
	}

	if err := g.users.Insert(ctx, u); err != nil {
		if shared.IsConflict(err) {
			return nil, user.ErrAlreadyExists.WithOp("Register")
		}
		return nil, shared.WrapError("user", "Register", shared.KindInternal, "could not store user", err)
	}

	g.logger.Info("user registered", logger.UserID(u.ID), logger.Role(string(u.Role)))
	return u, nil
}

// ListUsers returns every account. Admins only.
func (g *Gate) ListUsers(ctx context.Context, caller user.Identity) ([]*user.User, error) {
	if err := caller.RequireAdmin("ListUsers"); err != nil {
		return nil, err
	}

	users, err := g.users.List(ctx)
	if err != nil {
		return nil, shared.WrapError("user", "ListUsers", shared.KindInternal, "could not list users", err)
	}
	if users == nil {
		users = []*user.User{}
	}
	return users, nil
}
