package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/campus-hub/course-registry/internal/domain/user"
)

// UserRepository implements user.Repository in memory.
type UserRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]*user.User
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]*user.User)}
}

// List returns copies of every user in insertion order.
func (r *UserRepository) List(_ context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*user.User, 0, len(r.order))
	for _, id := range r.order {
		c := *r.items[id]
		out = append(out, &c)
	}
	return out, nil
}

// FindByID returns a copy of the user.
func (r *UserRepository) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	c := *u
	return &c, nil
}

// FindByLogin matches the email (case-insensitive) or the registration.
func (r *UserRepository) FindByLogin(_ context.Context, login string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email := strings.ToLower(strings.TrimSpace(login))
	for _, id := range r.order {
		u := r.items[id]
		if u.Email == email || u.Registration == login {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrNotFound
}

// Insert enforces uniqueness of email, cpf and registration.
func (r *UserRepository) Insert(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email || existing.CPF == u.CPF || existing.Registration == u.Registration {
			return user.ErrAlreadyExists
		}
	}

	u.ID = uuid.NewString()
	c := *u
	r.items[u.ID] = &c
	r.order = append(r.order, u.ID)
	return nil
}
