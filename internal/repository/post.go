package repository

import (
	"context"

	"social-api/internal/domain"
)

// PostRepository exposes persistence operations for Post entities. All list
// queries return posts newest-first (created_at DESC, id DESC) so that
// limit/offset slicing is stable across calls.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// Delete removes the post; likes and comments referencing it are
	// cascade-deleted by the schema.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error)
	// ListFeed returns posts authored by users the given user follows, plus
	// the user's own posts. Self-follow edges never exist, so the union with
	// own posts is explicit in the query.
	ListFeed(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error)
}
