package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	media_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
`

const selectPost = `
SELECT p.id, p.user_id, p.content, p.media_url, p.created_at, p.updated_at,
	u.username,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
FROM posts p
JOIN users u ON u.id = p.user_id
`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) repository.PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	err := r.pool.QueryRow(ctx, `
INSERT INTO posts (user_id, content, media_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
		post.UserID,
		post.Content,
		post.MediaURL,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return post.ID, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, selectPost+`WHERE p.id = $1`, id)

	var post domain.Post
	if err := scanPost(row.Scan, &post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
UPDATE posts SET content=$1, media_url=$2, updated_at=$3 WHERE id=$4`,
		post.Content,
		post.MediaURL,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, selectPost+`
ORDER BY p.created_at DESC, p.id DESC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, selectPost+`
WHERE p.user_id = $1
ORDER BY p.created_at DESC, p.id DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query user posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *PostRepository) ListFeed(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error) {
	// Own posts are unioned in explicitly; a self-follow edge never exists.
	rows, err := r.pool.Query(ctx, selectPost+`
WHERE p.user_id = $1
   OR p.user_id IN (SELECT followed_id FROM follows WHERE follower_id = $1)
ORDER BY p.created_at DESC, p.id DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	return collectPosts(rows)
}

func scanPost(scan func(dest ...any) error, post *domain.Post) error {
	return scan(
		&post.ID,
		&post.UserID,
		&post.Content,
		&post.MediaURL,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Username,
		&post.LikeCount,
		&post.CommentCount,
	)
}

func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var post domain.Post
		if err := scanPost(rows.Scan, &post); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
