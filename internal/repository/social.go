package repository

import (
	"context"

	"social-api/internal/domain"
)

// FollowRepository manages directed follow edges between users.
type FollowRepository interface {
	Init(ctx context.Context) error
	// Create inserts the edge. Returns domain.ErrAlreadyFollowing if the
	// (follower, followed) pair already exists; the uniqueness check rides on
	// the schema constraint so concurrent duplicates lose cleanly.
	Create(ctx context.Context, follow *domain.Follow) (int64, error)
	// Delete removes the edge. Returns domain.ErrNotFollowing if absent.
	Delete(ctx context.Context, followerID, followedID int64) error
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	Followers(ctx context.Context, userID int64) ([]domain.User, error)
	Following(ctx context.Context, userID int64) ([]domain.User, error)
}

// LikeRepository manages like edges between users and posts.
type LikeRepository interface {
	Init(ctx context.Context) error
	// Toggle removes the (user, post) like if present, otherwise inserts it.
	// Both directions run inside one transaction; repeated calls alternate
	// and never error.
	Toggle(ctx context.Context, userID, postID int64) (domain.LikeState, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
}

// CommentRepository manages comments on posts.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	// ListByPost returns comments newest-first (created_at DESC, id DESC).
	ListByPost(ctx context.Context, postID int64, limit, offset int) ([]domain.Comment, error)
}
