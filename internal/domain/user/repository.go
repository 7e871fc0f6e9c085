package user

import "context"

// Repository is the storage contract for accounts.
type Repository interface {
	// List returns every user in insertion order.
	List(ctx context.Context) ([]*User, error)

	// FindByID returns ErrNotFound when the id does not resolve.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByLogin matches the (lower-case) email or the registration number.
	// Returns ErrNotFound when nothing matches.
	FindByLogin(ctx context.Context, login string) (*User, error)

	// Insert assigns u.ID and stores the record.
	// Returns ErrAlreadyExists on a duplicate email, cpf or registration.
	Insert(ctx context.Context, u *User) error
}
