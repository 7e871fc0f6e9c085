package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/course-registry/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `
	id, name, email, password_hash, active, role, cpf, registration,
	first_semester_year, first_semester_unity, course, created_at, updated_at
`

// List returns every user ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// FindByID returns user.ErrNotFound for unknown or non-UUID ids.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, user.ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

// FindByLogin matches the lower-cased email or the exact registration.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	return r.findOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR registration = $2 LIMIT 1`,
		strings.ToLower(strings.TrimSpace(login)), login)
}

// Insert stores u and assigns the generated id.
func (r *UserRepository) Insert(ctx context.Context, u *user.User) error {
	id := uuid.New()
	_, err := r.conn.Exec(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, active, role, cpf, registration,
			first_semester_year, first_semester_unity, course, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		id,
		u.Name,
		u.Email,
		u.Password,
		u.Active,
		string(u.Role),
		u.CPF,
		u.Registration,
		u.FirstSemester.Year,
		u.FirstSemester.Unity,
		u.Course,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	u.ID = id.String()
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*user.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u    user.User
		id   uuid.UUID
		role string
	)
	err := row.Scan(
		&id,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Active,
		&role,
		&u.CPF,
		&u.Registration,
		&u.FirstSemester.Year,
		&u.FirstSemester.Unity,
		&u.Course,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ID = id.String()
	u.Role = user.Role(role)
	return &u, nil
}
