package user

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Transform mutates a user right before it is written.
type Transform func(ctx context.Context, u *User) error

// PrePersist is an ordered list of transforms the write path runs explicitly
// before handing a user to the repository.
type PrePersist []Transform

// Apply runs every step in order and stops at the first failure.
func (p PrePersist) Apply(ctx context.Context, u *User) error {
	for _, step := range p {
		if err := step(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPrePersist lower-cases the email and then hashes the password.
func DefaultPrePersist(cost int) PrePersist {
	return PrePersist{NormalizeEmail, HashPassword(cost)}
}

// NormalizeEmail stores emails in lower case so lookups are case-insensitive.
func NormalizeEmail(_ context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// HashPassword replaces a plain-text password with its bcrypt hash.
// Already-hashed passwords are left alone so re-saving a loaded user is safe.
func HashPassword(cost int) Transform {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return func(_ context.Context, u *User) error {
		if u.Password == "" || isBcryptHash(u.Password) {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hash)
		return nil
	}
}

// CheckPassword compares a plain-text candidate with the stored hash.
func (u *User) CheckPassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
