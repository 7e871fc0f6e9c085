package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/course-registry/internal/domain/discipline"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISCIPLINE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// DisciplineRepository implements discipline.Repository for PostgreSQL.
// The schedule is stored as a JSONB array.
type DisciplineRepository struct {
	conn querier
}

// NewDisciplineRepository creates a new DisciplineRepository.
func NewDisciplineRepository(conn *Connection) *DisciplineRepository {
	return &DisciplineRepository{conn: conn}
}

const disciplineColumns = `id, name, professor, difficulty, schedule, created_at, updated_at`

// List returns every discipline ordered by creation time.
func (r *DisciplineRepository) List(ctx context.Context) ([]*discipline.Discipline, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+disciplineColumns+` FROM disciplines ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list disciplines: %w", err)
	}
	defer rows.Close()

	out := []*discipline.Discipline{}
	for rows.Next() {
		d, err := scanDiscipline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindByID returns discipline.ErrNotFound for unknown or non-UUID ids.
func (r *DisciplineRepository) FindByID(ctx context.Context, id string) (*discipline.Discipline, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, discipline.ErrNotFound
	}

	row := r.conn.QueryRow(ctx, `SELECT `+disciplineColumns+` FROM disciplines WHERE id = $1`, uid)
	d, err := scanDiscipline(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, discipline.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// Insert stores d and assigns the generated id.
func (r *DisciplineRepository) Insert(ctx context.Context, d *discipline.Discipline) error {
	schedule, err := json.Marshal(d.Schedule.Clone())
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	id := uuid.New()
	_, err = r.conn.Exec(ctx, `
		INSERT INTO disciplines (id, name, professor, difficulty, schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, d.Name, d.Professor, d.Difficulty, schedule, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert discipline: %w", err)
	}

	d.ID = id.String()
	return nil
}

// Update overwrites every mutable column.
func (r *DisciplineRepository) Update(ctx context.Context, d *discipline.Discipline) error {
	uid, ok := parseID(d.ID)
	if !ok {
		return discipline.ErrNotFound
	}

	schedule, err := json.Marshal(d.Schedule.Clone())
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	tag, err := r.conn.Exec(ctx, `
		UPDATE disciplines
		SET name = $2, professor = $3, difficulty = $4, schedule = $5, updated_at = $6
		WHERE id = $1
	`, uid, d.Name, d.Professor, d.Difficulty, schedule, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update discipline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return discipline.ErrNotFound
	}
	return nil
}

// Delete removes the row.
func (r *DisciplineRepository) Delete(ctx context.Context, id string) error {
	uid, ok := parseID(id)
	if !ok {
		return discipline.ErrNotFound
	}

	tag, err := r.conn.Exec(ctx, `DELETE FROM disciplines WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete discipline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return discipline.ErrNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanDiscipline(row pgx.Row) (*discipline.Discipline, error) {
	var (
		d        discipline.Discipline
		id       uuid.UUID
		schedule []byte
	)
	if err := row.Scan(&id, &d.Name, &d.Professor, &d.Difficulty, &schedule, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schedule, &d.Schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}
	d.ID = id.String()
	d.Schedule = d.Schedule.Clone()
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

// parseID reports false for ids that cannot be a row key. Callers treat
// those as not found.
func parseID(id string) (uuid.UUID, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return uid, true
}
