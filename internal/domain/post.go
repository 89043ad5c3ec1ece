package domain

import "time"

// Post is a content item owned by a single user. The owner is fixed at
// creation; only the owner may edit or delete the post.
type Post struct {
	ID       int64
	UserID   int64
	Content  string
	MediaURL string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Derived fields populated by read queries, never written back.
	Username     string
	LikeCount    int64
	CommentCount int64
}
