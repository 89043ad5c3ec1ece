package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createLikesTable = `
CREATE TABLE IF NOT EXISTS likes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	post_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE,
	UNIQUE(user_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_likes_post_id ON likes(post_id);
`

type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) repository.LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLikesTable); err != nil {
		return fmt.Errorf("create likes table: %w", err)
	}
	return nil
}

func (r *LikeRepository) Toggle(ctx context.Context, userID, postID int64) (domain.LikeState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	res, err := tx.ExecContext(ctx, `
DELETE FROM likes WHERE user_id=? AND post_id=?`, userID, postID)
	if err != nil {
		return "", fmt.Errorf("delete like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("delete like rows affected: %w", err)
	}

	if n > 0 {
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("commit tx: %w", err)
		}
		return domain.LikeRemoved, nil
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO likes (user_id, post_id, created_at)
VALUES (?, ?, ?)`, userID, postID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert like: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return domain.LikeAdded, nil
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM likes WHERE post_id=?`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
