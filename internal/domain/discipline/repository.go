package discipline

import "context"

// Repository is the storage contract for disciplines. Implementations live in
// infrastructure/persistence.
type Repository interface {
	// List returns every discipline in insertion order.
	List(ctx context.Context) ([]*Discipline, error)

	// FindByID returns ErrNotFound when no record has the id, including ids
	// the backend cannot parse.
	FindByID(ctx context.Context, id string) (*Discipline, error)

	// Insert assigns d.ID and stores the record.
	Insert(ctx context.Context, d *Discipline) error

	// Update replaces the stored record with the same id.
	// Returns ErrNotFound if it no longer exists.
	Update(ctx context.Context, d *Discipline) error

	// Delete removes the record. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
