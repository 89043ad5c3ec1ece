package service

import (
	"context"
	"strings"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// PostService coordinates post lifecycle operations and feed composition.
type PostService interface {
	Create(ctx context.Context, userID int64, content, mediaURL string) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, limit, offset int) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error)
	// Update edits a post's content; only the owner may do this.
	Update(ctx context.Context, userID, postID int64, content, mediaURL string) (*domain.Post, error)
	// Delete removes a post; only the owner may do this. Likes and comments
	// on the post are cascade-deleted by the storage layer.
	Delete(ctx context.Context, userID, postID int64) error
	// Feed returns the user's personalized timeline: posts by followed users
	// plus the user's own posts, newest first. The ordering is stable within
	// one call's snapshot only; concurrent writes may shift items between
	// pages across calls.
	Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error)
}

type postService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

func (s *postService) Create(ctx context.Context, userID int64, content, mediaURL string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	post := &domain.Post{
		UserID:   userID,
		Content:  content,
		MediaURL: mediaURL,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, post.ID)
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.Get(ctx, id)
}

func (s *postService) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	limit, offset = normalizePage(limit, offset)
	return s.posts.List(ctx, limit, offset)
}

func (s *postService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error) {
	limit, offset = normalizePage(limit, offset)
	return s.posts.ListByUser(ctx, userID, limit, offset)
}

func (s *postService) Update(ctx context.Context, userID, postID int64, content, mediaURL string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, domain.ErrPermission
	}

	post.Content = content
	post.MediaURL = mediaURL
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, userID, postID int64) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return domain.ErrPermission
	}
	return s.posts.Delete(ctx, postID)
}

func (s *postService) Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Post, error) {
	limit, offset = normalizePage(limit, offset)
	return s.posts.ListFeed(ctx, userID, limit, offset)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
