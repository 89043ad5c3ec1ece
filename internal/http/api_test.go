package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social-api/internal/repository/sqlite"
	"social-api/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewHandler(
		service.NewUserService(userRepo),
		service.NewPostService(postRepo),
		service.NewRelationshipService(userRepo, postRepo, followRepo, likeRepo, commentRepo),
		logger,
		"test-secret",
		time.Hour,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

// signup registers and logs in a user, returning the bearer token and user id.
func signup(t *testing.T, router *gin.Engine, username string) (string, int64) {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, rr.Code, rr.Body.String())
	}
	userID := int64(decodeBody(t, rr)["id"].(float64))

	rr = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"username": username,
		"password": "password123",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rr.Code, rr.Body.String())
	}
	token, _ := decodeBody(t, rr)["token"].(string)
	if token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return token, userID
}

func createPost(t *testing.T, router *gin.Engine, token, content string) int64 {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"content": content})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return int64(decodeBody(t, rr)["id"].(float64))
}

func TestRegisterAndLogin(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "wrongpass",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rr.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/feed", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodGet, "/api/feed", "not-a-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rr.Code)
	}
}

func TestFollowEndpoints(t *testing.T) {
	router := newTestRouter(t)

	aliceToken, aliceID := signup(t, router, "alice")
	_, bobID := signup(t, router, "bob")

	selfPath := fmt.Sprintf("/api/users/%d/follow", aliceID)
	if rr := doJSON(t, router, http.MethodPost, selfPath, aliceToken, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-follow, got %d", rr.Code)
	}

	path := fmt.Sprintf("/api/users/%d/follow", bobID)
	if rr := doJSON(t, router, http.MethodPost, path, aliceToken, nil); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for follow, got %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodPost, path, aliceToken, nil); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate follow, got %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodPost, "/api/users/9999/follow", aliceToken, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing target, got %d", rr.Code)
	}

	if rr := doJSON(t, router, http.MethodDelete, path, aliceToken, nil); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for unfollow, got %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodDelete, path, aliceToken, nil); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for repeat unfollow, got %d", rr.Code)
	}
}

func TestLikeToggleEndpoint(t *testing.T) {
	router := newTestRouter(t)

	aliceToken, _ := signup(t, router, "alice")
	postID := createPost(t, router, aliceToken, "hello")

	path := fmt.Sprintf("/api/posts/%d/like", postID)

	rr := doJSON(t, router, http.MethodPost, path, aliceToken, nil)
	if rr.Code != http.StatusOK || decodeBody(t, rr)["state"] != "added" {
		t.Fatalf("expected added, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodPost, path, aliceToken, nil)
	if rr.Code != http.StatusOK || decodeBody(t, rr)["state"] != "removed" {
		t.Fatalf("expected removed, got %d: %s", rr.Code, rr.Body.String())
	}

	// delete-style alias toggles too
	rr = doJSON(t, router, http.MethodDelete, path, aliceToken, nil)
	if rr.Code != http.StatusOK || decodeBody(t, rr)["state"] != "added" {
		t.Fatalf("expected added via alias, got %d: %s", rr.Code, rr.Body.String())
	}

	if rr := doJSON(t, router, http.MethodPost, "/api/posts/9999/like", aliceToken, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing post, got %d", rr.Code)
	}
}

func TestCommentEndpoints(t *testing.T) {
	router := newTestRouter(t)

	aliceToken, _ := signup(t, router, "alice")
	postID := createPost(t, router, aliceToken, "hello")

	path := fmt.Sprintf("/api/posts/%d/comments", postID)

	if rr := doJSON(t, router, http.MethodPost, path, aliceToken, gin.H{"content": ""}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty comment, got %d", rr.Code)
	}

	for _, content := range []string{"one", "two", "three"} {
		if rr := doJSON(t, router, http.MethodPost, path, aliceToken, gin.H{"content": content}); rr.Code != http.StatusCreated {
			t.Fatalf("comment %s: expected 201, got %d", content, rr.Code)
		}
	}

	rr := doJSON(t, router, http.MethodGet, path, aliceToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list comments: expected 200, got %d", rr.Code)
	}
	var comments []CommentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &comments); err != nil {
		t.Fatalf("decode comments: %v", err)
	}
	if len(comments) != 3 || comments[0].Content != "three" {
		t.Fatalf("expected 3 comments newest-first, got %+v", comments)
	}
}

func TestFeedEndpoint(t *testing.T) {
	router := newTestRouter(t)

	aliceToken, _ := signup(t, router, "alice")
	bobToken, bobID := signup(t, router, "bob")

	createPost(t, router, bobToken, "p1")
	createPost(t, router, bobToken, "p2")
	createPost(t, router, aliceToken, "p3")

	if rr := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil); rr.Code != http.StatusCreated {
		t.Fatalf("follow: expected 201, got %d", rr.Code)
	}

	rr := doJSON(t, router, http.MethodGet, "/api/feed", aliceToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("feed: expected 200, got %d", rr.Code)
	}
	var feed []PostResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}

	want := []string{"p3", "p2", "p1"}
	if len(feed) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(feed))
	}
	for i, content := range want {
		if feed[i].Content != content {
			t.Fatalf("feed[%d]: expected %q, got %q", i, content, feed[i].Content)
		}
	}
}

func TestPostOwnershipOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	aliceToken, _ := signup(t, router, "alice")
	bobToken, _ := signup(t, router, "bob")

	postID := createPost(t, router, aliceToken, "mine")
	path := fmt.Sprintf("/api/posts/%d", postID)

	if rr := doJSON(t, router, http.MethodPut, path, bobToken, gin.H{"content": "stolen"}); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner update, got %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodDelete, path, bobToken, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner delete, got %d", rr.Code)
	}

	if rr := doJSON(t, router, http.MethodPut, path, aliceToken, gin.H{"content": "edited"}); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner update, got %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodDelete, path, aliceToken, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for owner delete, got %d", rr.Code)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	router := newTestRouter(t)

	aliceToken, _ := signup(t, router, "alice")
	bobToken, bobID := signup(t, router, "bob")

	createPost(t, router, bobToken, "bob post")
	if rr := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil); rr.Code != http.StatusCreated {
		t.Fatalf("follow: expected 201, got %d", rr.Code)
	}

	if rr := doJSON(t, router, http.MethodDelete, "/api/me", bobToken, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete account: expected 204, got %d", rr.Code)
	}

	rr := doJSON(t, router, http.MethodGet, "/api/feed", aliceToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("feed: expected 200, got %d", rr.Code)
	}
	var feed []PostResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("expected empty feed after account delete, got %d posts", len(feed))
	}
}
