package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"social-api/internal/domain"
	"social-api/internal/monitoring"
	"social-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	posts     service.PostService
	rels      service.RelationshipService
	logger    *logrus.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	rels service.RelationshipService,
	logger *logrus.Logger,
	jwtSecret string,
	tokenTTL time.Duration,
) *Handler {
	return &Handler{
		users:     users,
		posts:     posts,
		rels:      rels,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(h.logger))
	router.Use(monitoring.Instrument())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("")
		authed.Use(h.authRequired())
		{
			authed.GET("/me", h.me)
			authed.PUT("/me", h.updateProfile)
			authed.DELETE("/me", h.deleteAccount)
			authed.GET("/users/:id", h.getUser)
			authed.GET("/users/:id/followers", h.listFollowers)
			authed.GET("/users/:id/following", h.listFollowing)
			authed.GET("/users/:id/posts", h.listUserPosts)
			authed.POST("/users/:id/follow", h.follow)
			authed.DELETE("/users/:id/follow", h.unfollow)

			authed.POST("/posts", h.createPost)
			authed.GET("/posts", h.listPosts)
			authed.GET("/posts/:id", h.getPost)
			authed.PUT("/posts/:id", h.updatePost)
			authed.DELETE("/posts/:id", h.deletePost)

			authed.POST("/posts/:id/like", h.toggleLike)
			authed.DELETE("/posts/:id/like", h.toggleLike) // alias, same toggle
			authed.POST("/posts/:id/comments", h.createComment)
			authed.GET("/posts/:id/comments", h.listComments)

			authed.GET("/feed", h.feed)
		}
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Website        *string `json:"website"`
	ProfilePicture *string `json:"profile_picture"`
	CoverPhoto     *string `json:"cover_photo"`
}

type postRequest struct {
	Content  string `json:"content" binding:"required"`
	MediaURL string `json:"media_url"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		// remaining register failures are input validation
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	monitoring.RegisterSuccess.Inc()
	c.JSON(http.StatusCreated, userToResponse(*user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		monitoring.LoginFailure.Inc()
		h.respondError(c, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	monitoring.LoginSuccess.Inc()
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToResponse(*user),
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), service.ProfileUpdate{
		Email:          req.Email,
		Bio:            req.Bio,
		Location:       req.Location,
		Website:        req.Website,
		ProfilePicture: req.ProfilePicture,
		CoverPhoto:     req.CoverPhoto,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), currentUserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) follow(c *gin.Context) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.rels.Follow(c.Request.Context(), currentUserID(c), targetID); err != nil {
		h.respondError(c, err)
		return
	}

	monitoring.FollowsCreated.Inc()
	c.JSON(http.StatusCreated, gin.H{"following": targetID})
}

func (h *Handler) unfollow(c *gin.Context) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.rels.Unfollow(c.Request.Context(), currentUserID(c), targetID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unfollowed": targetID})
}

func (h *Handler) listFollowers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	users, err := h.rels.Followers(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersToResponse(users))
}

func (h *Handler) listFollowing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	users, err := h.rels.Following(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersToResponse(users))
}

func (h *Handler) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUserID(c), req.Content, req.MediaURL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	monitoring.PostsCreated.Inc()
	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	limit, offset := pageParams(c)
	posts, err := h.posts.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) listUserPosts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	posts, err := h.posts.ListByUser(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), currentUserID(c), id, req.Content, req.MediaURL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	state, err := h.rels.ToggleLike(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	monitoring.LikesToggled.WithLabelValues(string(state)).Inc()
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *Handler) createComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.rels.Comment(c.Request.Context(), currentUserID(c), id, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commentToResponse(*comment))
}

func (h *Handler) listComments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	comments, err := h.rels.ListComments(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) feed(c *gin.Context) {
	limit, offset := pageParams(c)
	posts, err := h.posts.Feed(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

// respondError maps the domain error taxonomy onto HTTP statuses. Everything
// here is recoverable; unrecognized errors are logged and reported as 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSelfFollow), errors.Is(err, domain.ErrEmptyContent):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyFollowing), errors.Is(err, domain.ErrNotFollowing):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrUserAlreadyExists):
		status = http.StatusConflict
	default:
		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestIDKey),
			"path":       c.Request.URL.Path,
		}).Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

type UserResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	Website        string `json:"website,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	CoverPhoto     string `json:"cover_photo,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type PostResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Content      string `json:"content"`
	MediaURL     string `json:"media_url,omitempty"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type CommentResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	PostID    int64  `json:"post_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		Location:       user.Location,
		Website:        user.Website,
		ProfilePicture: user.ProfilePicture,
		CoverPhoto:     user.CoverPhoto,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
}

func usersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	return resp
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:           post.ID,
		UserID:       post.UserID,
		Username:     post.Username,
		Content:      post.Content,
		MediaURL:     post.MediaURL,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    post.UpdatedAt.Format(time.RFC3339),
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		Username:  comment.Username,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}
