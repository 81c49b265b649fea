package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"moments_api/internal/config"
	"moments_api/internal/database"
	"moments_api/internal/handler"
	"moments_api/internal/logger"
	"moments_api/internal/queue"
	"moments_api/internal/redis"
	"moments_api/internal/repository"
	"moments_api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database and apply migrations
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Optional collaborators: activity stream and media store
	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		publisher = queue.NewPublisher(client.Client)
		log.Info("Activity events enabled")
	} else {
		log.Info("REDIS_URL not set, activity events disabled")
	}

	var store service.ObjectStore
	if cfg.MediaConfigured() {
		r2, err := service.NewR2Store(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create media store: %w", err)
		}
		store = r2
	} else {
		log.Warn("R2 settings incomplete, image uploads disabled")
	}

	// 4. Wire repositories, services and handlers
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followerRepo := repository.NewFollowerRepository(db)

	media := service.NewMediaService(store)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, cfg.DefaultProfileImageURL)

	opts := handler.Options{
		PageSize:              cfg.PageSize,
		UnauthenticatedStatus: cfg.UnauthenticatedStatus,
	}

	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService, opts),
		PostHandler:     handler.NewPostHandler(service.NewPostService(postRepo, likeRepo, media, publisher, cfg.DefaultPostImageURL), opts),
		CommentHandler:  handler.NewCommentHandler(service.NewCommentService(commentRepo, postRepo, publisher), opts),
		LikeHandler:     handler.NewLikeHandler(service.NewLikeService(likeRepo, postRepo, publisher), opts),
		FollowerHandler: handler.NewFollowerHandler(service.NewFollowerService(followerRepo, userRepo, publisher), opts),
		ProfileHandler:  handler.NewProfileHandler(service.NewProfileService(profileRepo, followerRepo, media), opts),
		TokenParser:     authService,
		Logger:          log,
	})

	// 5. Serve until a shutdown signal arrives
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.ServerPort).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
