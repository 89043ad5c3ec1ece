package service

import (
	"context"
	"errors"
	"testing"

	"social-api/internal/domain"
	"social-api/internal/repository/sqlite"
)

type testEnv struct {
	users UserService
	posts PostService
	rels  RelationshipService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	followRepo := sqlite.NewFollowRepository(db)
	likeRepo := sqlite.NewLikeRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)

	ctx := context.Background()
	for _, init := range []func(context.Context) error{
		userRepo.Init, postRepo.Init, followRepo.Init, likeRepo.Init, commentRepo.Init,
	} {
		if err := init(ctx); err != nil {
			t.Fatalf("init repository: %v", err)
		}
	}

	return testEnv{
		users: NewUserService(userRepo),
		posts: NewPostService(postRepo),
		rels:  NewRelationshipService(userRepo, postRepo, followRepo, likeRepo, commentRepo),
	}
}

func registerUser(t *testing.T, env testEnv, username string) *domain.User {
	t.Helper()
	user, err := env.users.Register(context.Background(), username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerUser(t, env, "alice")

	if _, err := env.users.Register(ctx, "alice", "other@example.com", "password123"); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
	if _, err := env.users.Register(ctx, "bob", "bob@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}

	user, err := env.users.Authenticate(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected password hash stripped from result")
	}

	if _, err := env.users.Authenticate(ctx, "alice", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := env.users.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")

	bio := "gopher"
	updated, err := env.users.UpdateProfile(ctx, alice.ID, ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio != "gopher" {
		t.Fatalf("expected bio updated, got %q", updated.Bio)
	}
	if updated.Email != "alice@example.com" {
		t.Fatalf("expected email untouched, got %q", updated.Email)
	}
}

func TestFollowRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")

	if err := env.rels.Follow(ctx, alice.ID, alice.ID); !errors.Is(err, domain.ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
	if err := env.rels.Follow(ctx, alice.ID, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing target, got %v", err)
	}

	if err := env.rels.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := env.rels.Follow(ctx, alice.ID, bob.ID); !errors.Is(err, domain.ErrAlreadyFollowing) {
		t.Fatalf("expected ErrAlreadyFollowing, got %v", err)
	}

	if err := env.rels.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := env.rels.Unfollow(ctx, alice.ID, bob.ID); !errors.Is(err, domain.ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}

	// self-follow stays rejected regardless of prior state
	if err := env.rels.Follow(ctx, alice.ID, alice.ID); !errors.Is(err, domain.ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
}

func TestToggleLikeIsItsOwnInverse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")
	post, err := env.posts.Create(ctx, alice.ID, "hello", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	for i := 0; i < 3; i++ {
		state, err := env.rels.ToggleLike(ctx, alice.ID, post.ID)
		if err != nil {
			t.Fatalf("toggle add %d: %v", i, err)
		}
		if state != domain.LikeAdded {
			t.Fatalf("toggle add %d: expected added, got %q", i, state)
		}

		state, err = env.rels.ToggleLike(ctx, alice.ID, post.ID)
		if err != nil {
			t.Fatalf("toggle remove %d: %v", i, err)
		}
		if state != domain.LikeRemoved {
			t.Fatalf("toggle remove %d: expected removed, got %q", i, state)
		}
	}

	if _, err := env.rels.ToggleLike(ctx, alice.ID, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing post, got %v", err)
	}
}

func TestCommentRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")
	post, err := env.posts.Create(ctx, alice.ID, "hello", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := env.rels.Comment(ctx, alice.ID, post.ID, "   "); !errors.Is(err, domain.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := env.rels.Comment(ctx, alice.ID, 9999, "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// no uniqueness constraint on comments
	for _, content := range []string{"one", "two", "three"} {
		if _, err := env.rels.Comment(ctx, alice.ID, post.ID, content); err != nil {
			t.Fatalf("comment %s: %v", content, err)
		}
	}

	comments, err := env.rels.ListComments(ctx, post.ID, 0, 0)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 3 || comments[0].Content != "three" {
		t.Fatalf("expected 3 comments newest-first, got %+v", comments)
	}

	if _, err := env.rels.ListComments(ctx, 9999, 0, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")

	post, err := env.posts.Create(ctx, alice.ID, "mine", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := env.posts.Update(ctx, bob.ID, post.ID, "stolen", ""); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission on update, got %v", err)
	}
	if err := env.posts.Delete(ctx, bob.ID, post.ID); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission on delete, got %v", err)
	}

	if _, err := env.posts.Update(ctx, alice.ID, post.ID, "edited", ""); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if err := env.posts.Delete(ctx, alice.ID, post.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestPostCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice")

	if _, err := env.posts.Create(context.Background(), alice.ID, "  ", ""); !errors.Is(err, domain.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestFeedComposition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")

	p1, err := env.posts.Create(ctx, bob.ID, "p1", "")
	if err != nil {
		t.Fatalf("p1: %v", err)
	}
	p2, err := env.posts.Create(ctx, bob.ID, "p2", "")
	if err != nil {
		t.Fatalf("p2: %v", err)
	}
	p3, err := env.posts.Create(ctx, alice.ID, "p3", "")
	if err != nil {
		t.Fatalf("p3: %v", err)
	}

	if err := env.rels.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	feed, err := env.posts.Feed(ctx, alice.ID, 0, 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	wantIDs := []int64{p3.ID, p2.ID, p1.ID}
	if len(feed) != len(wantIDs) {
		t.Fatalf("expected %d posts, got %d", len(wantIDs), len(feed))
	}
	for i, want := range wantIDs {
		if feed[i].ID != want {
			t.Fatalf("feed[%d]: expected %d, got %d", i, want, feed[i].ID)
		}
	}

	// stable slicing: limit/offset pages line up with the full order
	page, err := env.posts.Feed(ctx, alice.ID, 2, 1)
	if err != nil {
		t.Fatalf("feed page: %v", err)
	}
	if len(page) != 2 || page[0].ID != p2.ID || page[1].ID != p1.ID {
		t.Fatalf("expected [p2 p1] page, got %+v", page)
	}
}

func TestDeleteAccountCascadesIntoFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := registerUser(t, env, "alice")
	bob := registerUser(t, env, "bob")

	if _, err := env.posts.Create(ctx, bob.ID, "bob post", ""); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := env.rels.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	if err := env.users.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("delete bob: %v", err)
	}

	feed, err := env.posts.Feed(ctx, alice.ID, 0, 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("expected empty feed after cascade, got %d posts", len(feed))
	}

	// a new account under the same name starts with no inbound edges
	bob2 := registerUser(t, env, "bob")
	if err := env.rels.Unfollow(ctx, alice.ID, bob2.ID); !errors.Is(err, domain.ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing for new identity, got %v", err)
	}
}
