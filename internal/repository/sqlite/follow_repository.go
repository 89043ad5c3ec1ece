package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createFollowsTable = `
CREATE TABLE IF NOT EXISTS follows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	follower_id INTEGER NOT NULL,
	followed_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(follower_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY(followed_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(follower_id, followed_id)
);
CREATE INDEX IF NOT EXISTS idx_follows_follower_id ON follows(follower_id);
CREATE INDEX IF NOT EXISTS idx_follows_followed_id ON follows(followed_id);
`

type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) repository.FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFollowsTable); err != nil {
		return fmt.Errorf("create follows table: %w", err)
	}
	return nil
}

func (r *FollowRepository) Create(ctx context.Context, follow *domain.Follow) (int64, error) {
	follow.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO follows (follower_id, followed_id, created_at)
VALUES (?, ?, ?)`,
		follow.FollowerID,
		follow.FollowedID,
		follow.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrAlreadyFollowing
		}
		return 0, fmt.Errorf("insert follow: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("follow last insert id: %w", err)
	}
	follow.ID = id
	return id, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM follows WHERE follower_id=? AND followed_id=?`,
		followerID, followedID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete follow rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM follows WHERE follower_id=? AND followed_id=?`,
		followerID, followedID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count follows: %w", err)
	}
	return count > 0, nil
}

func (r *FollowRepository) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	return r.queryUsers(ctx, `
SELECT u.id, u.username, u.bio, u.profile_picture, u.created_at
FROM users u
JOIN follows f ON f.follower_id = u.id
WHERE f.followed_id = ?
ORDER BY f.created_at DESC, f.id DESC`, userID)
}

func (r *FollowRepository) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	return r.queryUsers(ctx, `
SELECT u.id, u.username, u.bio, u.profile_picture, u.created_at
FROM users u
JOIN follows f ON f.followed_id = u.id
WHERE f.follower_id = ?
ORDER BY f.created_at DESC, f.id DESC`, userID)
}

func (r *FollowRepository) queryUsers(ctx context.Context, query string, userID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query follow users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Bio, &user.ProfilePicture, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follow user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
