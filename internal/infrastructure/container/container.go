package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/recapp-backend/internal/config"
	"github.com/gdugdh24/recapp-backend/internal/delivery/http"
	"github.com/gdugdh24/recapp-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/recapp-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/cache"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/database"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/observability"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/server"
	"github.com/gdugdh24/recapp-backend/internal/repository"
	"github.com/gdugdh24/recapp-backend/internal/repository/memory"
	"github.com/gdugdh24/recapp-backend/internal/repository/postgres"
	"github.com/gdugdh24/recapp-backend/internal/usecase/auth"
	"github.com/gdugdh24/recapp-backend/internal/usecase/friendship"
	"github.com/gdugdh24/recapp-backend/internal/usecase/match"
	"github.com/gdugdh24/recapp-backend/internal/usecase/profile"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.GeminiClient

	shutdownTracer func(context.Context)
}

type repositories struct {
	profiles    repository.ProfileRepository
	requests    repository.FriendRequestRepository
	friendships repository.FriendshipRepository
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	log := logger.New(cfg.Logging, os.Stdout)
	c := &Container{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.shutdownTracer, err = observability.InitTracer(ctx, cfg.Tracing, cfg.Server.Env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	verifier, err := auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	repos, err := c.initRepositories(ctx)
	if err != nil {
		return nil, err
	}

	matchCache, err := c.initMatchCache(ctx)
	if err != nil {
		return nil, err
	}

	// A nil *GeminiClient must not reach the use case as a non-nil interface.
	var explainer match.Explainer
	if cfg.Gemini.APIKey != "" {
		geminiClient, gerr := gemini.NewGeminiClient(ctx, cfg.Gemini)
		if gerr != nil {
			log.Warn("gemini client unavailable, using template summaries", "error", gerr)
		} else {
			c.Gemini = geminiClient
			explainer = geminiClient
		}
	}

	// Initialize use cases
	profileUseCase := profile.NewProfileUseCase(
		repos.profiles,
		matchCache,
		cfg.Profile.EmailDomain,
		log,
	)

	matchUseCase := match.NewMatchUseCase(
		repos.profiles,
		repos.requests,
		repos.friendships,
		matchCache,
		explainer,
		match.Config{Limit: cfg.Match.Limit, PageSize: cfg.Match.PageSize},
		log,
	)

	friendshipUseCase := friendship.NewFriendshipUseCase(
		repos.profiles,
		repos.requests,
		repos.friendships,
		matchCache,
		log,
	)

	// Initialize router
	router := http.NewRouter(
		handler.NewAuthHandler(verifier),
		handler.NewProfileHandler(profileUseCase),
		handler.NewMatchHandler(matchUseCase),
		handler.NewFriendHandler(friendshipUseCase),
		middleware.NewAuthMiddleware(verifier),
		log,
		http.RouterOptions{
			ServiceName: cfg.Tracing.ServiceName,
			DevRoutes:   cfg.Server.IsDevelopment() && cfg.Auth.Secret != "",
		},
	)

	ginRouter, err := router.Setup()
	if err != nil {
		return nil, fmt.Errorf("failed to set up routes: %w", err)
	}

	c.Server = server.NewServer(&cfg.Server, ginRouter, log)
	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) (*repositories, error) {
	if c.Config.Storage.Type == config.StorageTypeMemory {
		c.Logger.Warn("using in-memory storage; data is lost on restart and not shared between instances")
		store := memory.NewStore()
		return &repositories{
			profiles:    store.Profiles(),
			requests:    store.FriendRequests(),
			friendships: store.Friendships(),
		}, nil
	}

	db, err := database.NewPostgresDB(ctx, &c.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	opts := postgres.Options{
		QueryTimeout: c.Config.Database.QueryTimeout,
		MaxRetries:   c.Config.Database.MaxRetries,
	}
	return &repositories{
		profiles:    postgres.NewProfileRepository(db, opts),
		requests:    postgres.NewFriendRequestRepository(db, opts),
		friendships: postgres.NewFriendshipRepository(db, opts),
	}, nil
}

func (c *Container) initMatchCache(ctx context.Context) (match.MatchCache, error) {
	if !c.Config.Redis.Enabled {
		return cache.NopMatchCache{}, nil
	}

	redisClient, err := database.NewRedisClient(ctx, &c.Config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	c.Redis = redisClient
	return cache.NewRedisMatchCache(redisClient, c.Config.Redis.TTL), nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			c.Logger.Warn("error closing gemini client", "error", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", "error", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if c.shutdownTracer != nil {
		c.shutdownTracer(context.Background())
	}

	return errors.Join(errs...)
}
