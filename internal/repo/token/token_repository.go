package token

import (
	"context"

	"github.com/mkrupp/disastermap/internal/domain"
)

// Repository defines the interface for the persisted bearer token slot.
type Repository interface {
	// GetToken returns the stored token and true, or false when the slot is empty.
	// Returns an error if the operation fails.
	GetToken(ctx context.Context) (domain.AuthToken, bool, error)

	// StoreToken replaces the stored token.
	StoreToken(ctx context.Context, token domain.AuthToken) error

	// ClearToken empties the slot. Clearing an empty slot is not an error.
	ClearToken(ctx context.Context) error

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
