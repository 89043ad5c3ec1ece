package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createLikesTable = `
CREATE TABLE IF NOT EXISTS likes (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE(user_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_likes_post_id ON likes(post_id);
`

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) repository.LikeRepository {
	return &LikeRepository{pool: pool}
}

func (r *LikeRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createLikesTable); err != nil {
		return fmt.Errorf("create likes table: %w", err)
	}
	return nil
}

func (r *LikeRepository) Toggle(ctx context.Context, userID, postID int64) (domain.LikeState, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // safe no-op on commit

	tag, err := tx.Exec(ctx, `
DELETE FROM likes WHERE user_id=$1 AND post_id=$2`, userID, postID)
	if err != nil {
		return "", fmt.Errorf("delete like: %w", err)
	}

	if tag.RowsAffected() > 0 {
		if err := tx.Commit(ctx); err != nil {
			return "", fmt.Errorf("commit tx: %w", err)
		}
		return domain.LikeRemoved, nil
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO likes (user_id, post_id, created_at)
VALUES ($1, $2, $3)`, userID, postID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert like: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return domain.LikeAdded, nil
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM likes WHERE post_id=$1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
