package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/campaign-hub/config"
	"github.com/upb/campaign-hub/handlers"
	"github.com/upb/campaign-hub/identity"
	"github.com/upb/campaign-hub/integrations/youtube"
	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/repositories/postgres"
	"github.com/upb/campaign-hub/services/access"
	"github.com/upb/campaign-hub/services/analytics"
	"github.com/upb/campaign-hub/services/asset"
	"github.com/upb/campaign-hub/services/audit"
	"github.com/upb/campaign-hub/services/campaign"
	"github.com/upb/campaign-hub/services/content"
	"github.com/upb/campaign-hub/services/feedback"
	"github.com/upb/campaign-hub/services/ratelimit"
	"github.com/upb/campaign-hub/services/scheduler"
	"github.com/upb/campaign-hub/services/sentiment"
	"github.com/upb/campaign-hub/storage"
	"go.uber.org/zap"
)

// developmentSecret signs tokens when JWT_SECRET is unset outside production.
const developmentSecret = "campaign-hub-development-secret"

// Dependencies holds every wired component. It is the single place where
// infrastructure, services and HTTP handlers are constructed.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Redis   *redis.Client
	Storage storage.Storage

	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories
	TxManager   repositories.TransactionManager

	// Services
	Audit     *audit.AuditService
	Resolver  *access.Resolver
	Campaigns *campaign.CampaignService
	Content   *content.ContentService
	Feedback  *feedback.FeedbackService
	Assets    *asset.AssetService
	Analytics *analytics.AnalyticsService
	Scheduler *scheduler.Scheduler

	// Middleware
	AuthMiddleware      *middleware.AuthMiddleware
	RBACMiddleware      *middleware.RBACMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// Handlers
	HealthHandler     *handlers.HealthHandler
	MeHandler         *handlers.MeHandler
	CapabilityHandler *handlers.CapabilityHandler
	CampaignHandler   *handlers.CampaignHandler
	ContentHandler    *handlers.ContentHandler
	FeedbackHandler   *handlers.FeedbackHandler
	AssetHandler      *handlers.AssetHandler
	AnalyticsHandler  *handlers.AnalyticsHandler
	AuditHandler      *handlers.AuditHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.init(ctx, cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) init(ctx context.Context, cfg *config.Config) error {
	d.initRepositories()

	if err := d.initAudit(cfg); err != nil {
		return fmt.Errorf("failed to start audit writer: %w", err)
	}
	if err := d.initIdentity(cfg); err != nil {
		return fmt.Errorf("failed to initialize identity: %w", err)
	}
	if err := d.initRateLimit(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	if err := d.initStorage(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize asset storage: %w", err)
	}
	if err := d.initServices(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := d.initScheduler(cfg); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	d.initHandlers()
	return nil
}

// initDatabase opens the pool and applies migrations when enabled.
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.PingContext(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAudit(cfg *config.Config) error {
	d.Audit = audit.NewAuditService(d.Repos.AuditLogs, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.Workers,
	})
	return d.Audit.Start()
}

func (d *Dependencies) initIdentity(cfg *config.Config) error {
	secret := cfg.Identity.JWTSecret
	if secret == "" {
		d.Logger.Warn("JWT_SECRET not set; using the development signing secret",
			zap.String("environment", cfg.Environment))
		secret = developmentSecret
	}

	validator, err := identity.NewValidator(identity.Config{
		Secret:   secret,
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		return err
	}

	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	d.Resolver = access.NewResolver(d.Repos.Users, d.Repos.Memberships, d.Logger)
	d.RBACMiddleware = middleware.NewRBACMiddleware(d.Resolver, d.Audit, d.Logger)
	return nil
}

// initRateLimit connects Redis when REDIS_URL is set. Without it the
// feedback limiter is a pass-through.
func (d *Dependencies) initRateLimit(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.URL == "" {
		d.Logger.Info("rate limiting disabled; REDIS_URL not set")
		d.RateLimitMiddleware = middleware.NewRateLimitMiddleware(nil, d.Logger)
		return nil
	}

	rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	d.Redis = rdb

	limiter := ratelimit.NewRateLimitService(rdb, cfg.Redis.FeedbackPerMinute, d.Logger)
	d.RateLimitMiddleware = middleware.NewRateLimitMiddleware(limiter, d.Logger)
	d.Logger.Info("rate limiting enabled",
		zap.Int("feedback_per_minute", cfg.Redis.FeedbackPerMinute))
	return nil
}

func (d *Dependencies) initStorage(ctx context.Context, cfg *config.Config) error {
	store, err := NewStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	d.Storage = store
	d.Logger.Info("asset storage configured", zap.String("backend", cfg.Storage.Backend))
	return nil
}

func (d *Dependencies) initServices(ctx context.Context, cfg *config.Config) error {
	d.Campaigns = campaign.NewCampaignService(
		d.Repos.Campaigns,
		d.Repos.Memberships,
		d.Repos.Users,
		d.TxManager,
		d.Audit,
		d.Logger,
	)
	d.Content = content.NewContentService(d.Repos.Content, d.Audit, d.Logger)

	classifier := sentiment.New(sentiment.OpenAIConfig{
		APIKey:     cfg.Sentiment.APIKey,
		BaseURL:    cfg.Sentiment.BaseURL,
		Model:      cfg.Sentiment.Model,
		Timeout:    cfg.Sentiment.Timeout,
		MaxRetries: cfg.Sentiment.MaxRetries,
	}, d.Logger)
	d.Feedback = feedback.NewFeedbackService(d.Repos.Feedback, d.Repos.Content, classifier, d.Logger)

	d.Assets = asset.NewAssetService(d.Repos.Assets, d.Storage, d.Audit, cfg.Storage.URLTTL, d.Logger)

	// A nil *youtube.Client must not reach the interface.
	var channels analytics.ChannelStatsFetcher
	if cfg.YouTube.APIKey != "" {
		client, err := youtube.New(ctx, youtube.Config{
			APIKey:  cfg.YouTube.APIKey,
			Timeout: cfg.YouTube.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create youtube client: %w", err)
		}
		channels = client
	} else {
		d.Logger.Info("youtube statistics disabled; YOUTUBE_API_KEY not set")
	}
	d.Analytics = analytics.NewAnalyticsService(d.Repos.Analytics, d.Repos.Campaigns, channels, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initScheduler(cfg *config.Config) error {
	if !cfg.Scheduler.Enabled {
		d.Logger.Info("scheduled publishing disabled")
		return nil
	}
	d.Scheduler = scheduler.NewScheduler(d.Content, d.Audit, cfg.Scheduler.CronSpec, d.Logger)
	return d.Scheduler.Start()
}

func (d *Dependencies) initHandlers() {
	d.HealthHandler = handlers.NewHealthHandler(d.healthChecks(), d.Logger)
	d.MeHandler = handlers.NewMeHandler(d.Logger)
	d.CapabilityHandler = handlers.NewCapabilityHandler(d.Logger)
	d.CampaignHandler = handlers.NewCampaignHandler(d.Campaigns, d.Logger)
	d.ContentHandler = handlers.NewContentHandler(d.Content, d.Logger)
	d.FeedbackHandler = handlers.NewFeedbackHandler(d.Feedback, d.Logger)
	d.AssetHandler = handlers.NewAssetHandler(d.Assets, d.Logger)
	d.AnalyticsHandler = handlers.NewAnalyticsHandler(d.Analytics, d.Logger)
	d.AuditHandler = handlers.NewAuditHandler(d.Audit, d.Logger)
}

func (d *Dependencies) healthChecks() map[string]handlers.DependencyCheck {
	checks := map[string]handlers.DependencyCheck{
		"database": d.DB.HealthCheck,
	}
	if d.Redis != nil {
		rdb := d.Redis
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

// Close stops background workers and releases connections. Safe to call on
// a partially initialized value.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error

	if d.Scheduler != nil {
		if err := d.Scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}

	if d.Audit != nil {
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.Audit.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("audit: %w", err))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	return errors.Join(errs...)
}
