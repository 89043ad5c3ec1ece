package domain

import "time"

// Follow is a directed edge from one user to another. At most one edge may
// exist per ordered (follower, followed) pair, and a user never follows
// themselves; the pair uniqueness is enforced by the storage schema.
type Follow struct {
	ID         int64
	FollowerID int64
	FollowedID int64
	CreatedAt  time.Time
}

// Like marks that a user liked a post. At most one like exists per
// (user, post) pair; the pair toggles between absent and present.
type Like struct {
	ID        int64
	UserID    int64
	PostID    int64
	CreatedAt time.Time
}

// LikeState reports which side of the toggle a like operation landed on.
type LikeState string

const (
	LikeAdded   LikeState = "added"
	LikeRemoved LikeState = "removed"
)

// Comment is a user's remark on a post. Any number of comments per
// (user, post) pair is allowed.
type Comment struct {
	ID        int64
	UserID    int64
	PostID    int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Username is populated by read queries for display.
	Username string
}
