package repository

import (
	"context"

	"social-api/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user; the storage schema cascades the delete to the
	// user's posts, follows (both directions), likes and comments.
	Delete(ctx context.Context, id int64) error
}
