package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createFollowsTable = `
CREATE TABLE IF NOT EXISTS follows (
	id BIGSERIAL PRIMARY KEY,
	follower_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	followed_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE(follower_id, followed_id)
);
CREATE INDEX IF NOT EXISTS idx_follows_follower_id ON follows(follower_id);
CREATE INDEX IF NOT EXISTS idx_follows_followed_id ON follows(followed_id);
`

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) repository.FollowRepository {
	return &FollowRepository{pool: pool}
}

func (r *FollowRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createFollowsTable); err != nil {
		return fmt.Errorf("create follows table: %w", err)
	}
	return nil
}

func (r *FollowRepository) Create(ctx context.Context, follow *domain.Follow) (int64, error) {
	follow.CreatedAt = time.Now().UTC()

	err := r.pool.QueryRow(ctx, `
INSERT INTO follows (follower_id, followed_id, created_at)
VALUES ($1, $2, $3)
RETURNING id`,
		follow.FollowerID,
		follow.FollowedID,
		follow.CreatedAt,
	).Scan(&follow.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrAlreadyFollowing
		}
		return 0, fmt.Errorf("insert follow: %w", err)
	}
	return follow.ID, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID int64) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM follows WHERE follower_id=$1 AND followed_id=$2`,
		followerID, followedID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM follows WHERE follower_id=$1 AND followed_id=$2`,
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
WHERE f.followed_id = $1
ORDER BY f.created_at DESC, f.id DESC`, userID)
}

func (r *FollowRepository) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	return r.queryUsers(ctx, `
SELECT u.id, u.username, u.bio, u.profile_picture, u.created_at
FROM users u
JOIN follows f ON f.followed_id = u.id
WHERE f.follower_id = $1
ORDER BY f.created_at DESC, f.id DESC`, userID)
}

func (r *FollowRepository) queryUsers(ctx context.Context, query string, userID int64) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, userID)
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
