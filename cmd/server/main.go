package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social-api/internal/config"
	apphttp "social-api/internal/http"
	"social-api/internal/repository"
	"social-api/internal/repository/postgres"
	"social-api/internal/repository/sqlite"
	"social-api/internal/service"
)

type repositories struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	close    func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	defer repos.close()

	// Init order follows foreign key dependencies.
	inits := []struct {
		name string
		init func(context.Context) error
	}{
		{"users", repos.users.Init},
		{"posts", repos.posts.Init},
		{"follows", repos.follows.Init},
		{"likes", repos.likes.Init},
		{"comments", repos.comments.Init},
	}
	for _, r := range inits {
		if err := r.init(ctx); err != nil {
			logger.Fatalf("init %s repository: %v", r.name, err)
		}
	}

	userService := service.NewUserService(repos.users)
	postService := service.NewPostService(repos.posts)
	relService := service.NewRelationshipService(repos.users, repos.posts, repos.follows, repos.likes, repos.comments)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		postService,
		relService,
		logger,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repositories, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return repositories{}, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return repositories{
			users:    sqlite.NewUserRepository(db),
			posts:    sqlite.NewPostRepository(db),
			follows:  sqlite.NewFollowRepository(db),
			likes:    sqlite.NewLikeRepository(db),
			comments: sqlite.NewCommentRepository(db),
			close:    func() { db.Close() },
		}, nil

	case "postgres":
		if cfg.Database.DSN == "" {
			return repositories{}, fmt.Errorf("database dsn is required for postgres")
		}
		pool, err := postgres.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return repositories{}, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("using postgres database")
		return repositories{
			users:    postgres.NewUserRepository(pool),
			posts:    postgres.NewPostRepository(pool),
			follows:  postgres.NewFollowRepository(pool),
			likes:    postgres.NewLikeRepository(pool),
			comments: postgres.NewCommentRepository(pool),
			close:    pool.Close,
		}, nil

	default:
		return repositories{}, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
