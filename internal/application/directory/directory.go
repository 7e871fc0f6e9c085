// Package directory owns discipline CRUD: it authorizes the caller, validates
// schedules and talks to the injected repository.
package directory

import (
	"context"
	"time"

	"github.com/campus-hub/course-registry/internal/domain/discipline"
	"github.com/campus-hub/course-registry/internal/domain/shared"
	"github.com/campus-hub/course-registry/internal/domain/user"
	"github.com/campus-hub/course-registry/pkg/logger"
)

// DeletedMessage acknowledges a successful Delete.
const DeletedMessage = "Deleted successfully"

// Directory is the discipline service.
type Directory struct {
	repo   discipline.Repository
	now    func() time.Time
	logger *logger.Logger
}

// Option customizes a Directory.
type Option func(*Directory)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Directory) { d.logger = l }
}

// New creates a Directory backed by repo.
func New(repo discipline.Repository, opts ...Option) *Directory {
	d := &Directory{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("directory"))
	return d
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// List returns every discipline.
func (d *Directory) List(ctx context.Context, _ user.Identity) ([]*discipline.Discipline, error) {
	items, err := d.repo.List(ctx)
	if err != nil {
		return nil, shared.WrapError("discipline", "List", shared.KindInternal, "could not list disciplines", err)
	}
	if items == nil {
		items = []*discipline.Discipline{}
	}
	return items, nil
}

// Detail returns the discipline with the given id.
func (d *Directory) Detail(ctx context.Context, _ user.Identity, id string) (*discipline.Discipline, error) {
	return d.find(ctx, "Detail", id)
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITES
// ══════════════════════════════════════════════════════════════════════════════

// Create validates and stores a new discipline.
func (d *Directory) Create(ctx context.Context, caller user.Identity, in discipline.CreateInput) (*discipline.Discipline, error) {
	if err := caller.RequireAdmin("CreateDiscipline"); err != nil {
		return nil, err
	}

	rec, err := discipline.New(in, d.now())
	if err != nil {
		return nil, err
	}

	if err := d.repo.Insert(ctx, rec); err != nil {
		return nil, shared.WrapError("discipline", "Create", shared.KindInternal, "could not store discipline", err)
	}

	d.logger.Info("discipline created",
		logger.DisciplineID(rec.ID),
		logger.UserID(caller.UserID),
		logger.Int("slots", len(rec.Schedule)),
	)
	return rec, nil
}

// Update merges a partial input over the stored record. An invalid merged
// schedule leaves the stored record untouched.
func (d *Directory) Update(ctx context.Context, caller user.Identity, id string, in discipline.UpdateInput) (*discipline.Discipline, error) {
	if err := caller.RequireAdmin("UpdateDiscipline"); err != nil {
		return nil, err
	}

	current, err := d.find(ctx, "Update", id)
	if err != nil {
		return nil, err
	}

	merged, err := current.Merge(in, d.now())
	if err != nil {
		return nil, err
	}

	if err := d.repo.Update(ctx, merged); err != nil {
		if shared.IsNotFound(err) {
			return nil, discipline.ErrNotFound.WithOp("Update")
		}
		return nil, shared.WrapError("discipline", "Update", shared.KindInternal, "could not update discipline", err)
	}

	d.logger.Info("discipline updated", logger.DisciplineID(merged.ID), logger.UserID(caller.UserID))
	return merged, nil
}

// Delete removes the discipline with the given id.
func (d *Directory) Delete(ctx context.Context, caller user.Identity, id string) error {
	if err := caller.RequireAdmin("DeleteDiscipline"); err != nil {
		return err
	}

	if err := d.repo.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return discipline.ErrNotFound.WithOp("Delete")
		}
		return shared.WrapError("discipline", "Delete", shared.KindInternal, "could not delete discipline", err)
	}

	d.logger.Info("discipline deleted", logger.DisciplineID(id), logger.UserID(caller.UserID))
	return nil
}

func (d *Directory) find(ctx context.Context, op, id string) (*discipline.Discipline, error) {
	rec, err := d.repo.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, discipline.ErrNotFound.WithOp(op)
		}
		return nil, shared.WrapError("discipline", op, shared.KindInternal, "could not load discipline", err)
	}
	return rec, nil
}
