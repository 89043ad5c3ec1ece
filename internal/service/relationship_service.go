package service

import (
	"context"
	"strings"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// RelationshipService maintains follow, like and comment edges and their
// invariants. Self-follow is rejected here and nowhere else; pair uniqueness
// rides on the storage schema so concurrent duplicates lose cleanly.
//
// Follow and ToggleLike deliberately surface the "already present" state
// differently: following twice is an error (two distinct user intents),
// while liking twice alternates the edge (one control toggled). Do not
// unify the two.
type RelationshipService interface {
	Follow(ctx context.Context, followerID, targetID int64) error
	Unfollow(ctx context.Context, followerID, targetID int64) error
	Followers(ctx context.Context, userID int64) ([]domain.User, error)
	Following(ctx context.Context, userID int64) ([]domain.User, error)
	ToggleLike(ctx context.Context, userID, postID int64) (domain.LikeState, error)
	Comment(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID int64, limit, offset int) ([]domain.Comment, error)
}

type relationshipService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
}

func NewRelationshipService(
	users repository.UserRepository,
	posts repository.PostRepository,
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
) RelationshipService {
	return &relationshipService{
		users:    users,
		posts:    posts,
		follows:  follows,
		likes:    likes,
		comments: comments,
	}
}

func (s *relationshipService) Follow(ctx context.Context, followerID, targetID int64) error {
	if followerID == targetID {
		return domain.ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	follow := &domain.Follow{
		FollowerID: followerID,
		FollowedID: targetID,
	}
	_, err := s.follows.Create(ctx, follow)
	return err
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, targetID int64) error {
	return s.follows.Delete(ctx, followerID, targetID)
}

func (s *relationshipService) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

func (s *relationshipService) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

func (s *relationshipService) ToggleLike(ctx context.Context, userID, postID int64) (domain.LikeState, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return "", err
	}
	return s.likes.Toggle(ctx, userID, postID)
}

func (s *relationshipService) Comment(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *relationshipService) ListComments(ctx context.Context, postID int64, limit, offset int) ([]domain.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return s.comments.ListByPost(ctx, postID, limit, offset)
}
