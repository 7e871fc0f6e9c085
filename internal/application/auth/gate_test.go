package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/course-registry/internal/domain/shared"
	"github.com/campus-hub/course-registry/internal/domain/user"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/memory"
)

var testConfig = Config{
	Secret:     "test-secret",
	Issuer:     "course-registry",
	TokenTTL:   time.Hour,
	BcryptCost: bcrypt.MinCost,
}

func newGate(t *testing.T) (*Gate, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	g, err := NewGate(users, memory.NewRevocationStore(), testConfig)
	require.NoError(t, err)
	return g, users
}

func registerStudent(t *testing.T, g *Gate) *user.User {
	t.Helper()
	u, err := g.Register(context.Background(), user.RegisterInput{
		Name:          "Alan Turing",
		Email:         "Alan@Example.com",
		Password:      "123123",
		CPF:           "11144477735",
		Registration:  "2020100002",
		FirstSemester: user.Semester{Year: 2020, Unity: 1},
		Course:        "Ciência da computação",
	})
	require.NoError(t, err)
	return u
}

func TestNewGate_RequiresSecret(t *testing.T) {
	cfg := testConfig
	cfg.Secret = ""
	_, err := NewGate(memory.NewUserRepository(), nil, cfg)
	assert.Error(t, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER
// ══════════════════════════════════════════════════════════════════════════════

func TestRegister_HashesAndNormalizes(t *testing.T) {
	g, users := newGate(t)
	u := registerStudent(t, g)

	stored, err := users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alan@example.com", stored.Email)
	assert.NotEqual(t, "123123", stored.Password)
	assert.Equal(t, user.RoleStudent, stored.Role)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	g, _ := newGate(t)
	registerStudent(t, g)

	_, err := g.Register(context.Background(), user.RegisterInput{
		Name:         "Other",
		Email:        "ALAN@example.com",
		Password:     "x",
		CPF:          "000",
		Registration: "999",
		Course:       "c",
	})
	assert.True(t, shared.IsConflict(err))
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN / AUTHENTICATE / LOGOUT
// ══════════════════════════════════════════════════════════════════════════════

func TestLogin_ByEmailOrRegistration(t *testing.T) {
	g, _ := newGate(t)
	u := registerStudent(t, g)
	ctx := context.Background()

	for _, login := range []string{"alan@example.com", "ALAN@EXAMPLE.COM", "2020100002"} {
		s, err := g.Login(ctx, login, "123123")
		require.NoError(t, err, login)
		assert.NotEmpty(t, s.Token)
		assert.Equal(t, u.ID, s.User.ID)
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	g, _ := newGate(t)
	registerStudent(t, g)
	ctx := context.Background()

	_, err := g.Login(ctx, "alan@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = g.Login(ctx, "nobody@example.com", "123123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = g.Login(ctx, "", "")
	assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	g, _ := newGate(t)
	u := registerStudent(t, g)
	ctx := context.Background()

	s, err := g.Login(ctx, "alan@example.com", "123123")
	require.NoError(t, err)

	id, err := g.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, user.RoleStudent, id.Role)
	assert.NotEmpty(t, id.TokenID)
	assert.WithinDuration(t, s.ExpiresAt, id.ExpiresAt, time.Second)
}

func TestAuthenticate_Rejects(t *testing.T) {
	g, _ := newGate(t)
	ctx := context.Background()

	_, err := g.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = g.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other, err := NewTokens("other-secret", testConfig.Issuer, time.Hour, nil)
	require.NoError(t, err)
	forged, _, err := other.Issue(&user.User{ID: "u1", Role: user.RoleAdmin})
	require.NoError(t, err)
	_, err = g.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             user.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ID: "j", Issuer: testConfig.Issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = g.Authenticate(ctx, none)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthenticate_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issued

	users := memory.NewUserRepository()
	g, err := NewGate(users, nil, testConfig, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	registerStudent(t, g)

	s, err := g.Login(context.Background(), "alan@example.com", "123123")
	require.NoError(t, err)

	now = issued.Add(2 * time.Hour)
	_, err = g.Authenticate(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLogout_RevokesToken(t *testing.T) {
	g, _ := newGate(t)
	registerStudent(t, g)
	ctx := context.Background()

	s, err := g.Login(ctx, "alan@example.com", "123123")
	require.NoError(t, err)
	id, err := g.Authenticate(ctx, s.Token)
	require.NoError(t, err)

	require.NoError(t, g.Logout(ctx, id))

	_, err = g.Authenticate(ctx, s.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	fresh, err := g.Login(ctx, "alan@example.com", "123123")
	require.NoError(t, err)
	_, err = g.Authenticate(ctx, fresh.Token)
	assert.NoError(t, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

func TestListUsers_AdminOnly(t *testing.T) {
	g, _ := newGate(t)
	registerStudent(t, g)
	ctx := context.Background()

	_, err := g.ListUsers(ctx, user.Identity{Role: user.RoleStudent})
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	list, err := g.ListUsers(ctx, user.Identity{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
