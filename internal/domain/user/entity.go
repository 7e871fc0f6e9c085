// Package user contains the account model consulted by the access gate.
package user

import (
	"strings"
	"time"

	"github.com/campus-hub/course-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role decides what a caller may do.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// Semester identifies an academic term.
type Semester struct {
	Year  int `json:"year" bson:"year"`
	Unity int `json:"unity" bson:"unity"`
}

// User is a registered student or administrator.
type User struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"-"` // bcrypt hash once persisted
	Active        bool      `json:"active"`
	Role          Role      `json:"role"`
	CPF           string    `json:"cpf"`
	Registration  string    `json:"registration"`
	FirstSemester Semester  `json:"firstSemester"`
	Course        string    `json:"course"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RegisterInput carries the fields of a new account. Password is plain text.
type RegisterInput struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Role          Role     `json:"role"`
	CPF           string   `json:"cpf"`
	Registration  string   `json:"registration"`
	FirstSemester Semester `json:"firstSemester"`
	Course        string   `json:"course"`
	Active        bool     `json:"active"`
}

// New builds an unsaved user. The password is still plain text; the
// pre-persist pipeline hashes it before the repository sees it.
func New(in RegisterInput, now time.Time) (*User, error) {
	role := in.Role
	if role == "" {
		role = RoleStudent
	}

	u := &User{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Password:      in.Password,
		Active:        in.Active,
		Role:          role,
		CPF:           strings.TrimSpace(in.CPF),
		Registration:  strings.TrimSpace(in.Registration),
		FirstSemester: in.FirstSemester,
		Course:        strings.TrimSpace(in.Course),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch {
	case u.Name == "":
		return nil, invalid("name is required")
	case u.Email == "":
		return nil, invalid("email is required")
	case u.Password == "":
		return nil, invalid("password is required")
	case u.CPF == "":
		return nil, invalid("cpf is required")
	case u.Registration == "":
		return nil, invalid("registration is required")
	case u.Course == "":
		return nil, invalid("course is required")
	case !u.Role.IsValid():
		return nil, invalid("role must be admin or student")
	}

	return u, nil
}

// Identity returns the caller view of u.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role}
}

// Identity is an authenticated caller as seen by the services.
type Identity struct {
	UserID    string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// RequireAdmin returns ErrForbidden unless the caller is an admin.
func (i Identity) RequireAdmin(op string) error {
	if !i.IsAdmin() {
		return shared.ErrForbidden.WithOp(op)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrNotFound      = shared.NewDomainError("user", "Find", shared.KindNotFound, "User not found")
	ErrAlreadyExists = shared.NewDomainError("user", "Create", shared.KindConflict, "User already exists")
)

func invalid(msg string) error {
	return shared.NewDomainError("user", "Validate", shared.KindInvalidInput, msg)
}
