package account

import (
	"context"
	"errors"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStorage            = errors.New("file storage failure")
)

// ValidationError reports a missing or empty required field.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Repository abstracts persistence concerns from the domain layer.
// Implementations may be in-memory, SQL, NoSQL, etc.
type Repository interface {
	// Create persists a new account and assigns its ID.
	Create(ctx context.Context, acc *Account) error
	FindByID(ctx context.Context, id int64) (Account, error)
	// FindByUsername matches usernames case-sensitively.
	FindByUsername(ctx context.Context, username string) (Account, error)
	Update(ctx context.Context, acc Account) error
}
