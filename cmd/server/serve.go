package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/portfolio-api/backend/internal/auth"
	"github.com/ayush/portfolio-api/backend/internal/comment"
	"github.com/ayush/portfolio-api/backend/internal/config"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/like"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/metrics"
	"github.com/ayush/portfolio-api/backend/internal/middleware"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/project"
	"github.com/ayush/portfolio-api/backend/internal/ratelimit"
	"github.com/ayush/portfolio-api/backend/internal/store"
	"github.com/ayush/portfolio-api/backend/internal/user"
)

// userStore is what every consumer of user records needs together.
type userStore interface {
	auth.UserStore
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateUsername(ctx context.Context, id, username string) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Image) error
}

type imageStore interface {
	Upload(ctx context.Context, folder string, data []byte, contentType string) (models.Image, error)
	Destroy(ctx context.Context, publicID string) error
}

func serve(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		return err
	}
	defer disconnectMongo(mongoClient, log)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		return err
	}

	// ── Users ────────────────────────────────────────────────
	var users userStore = mongoStore
	if cfg.UserStore == config.UserStorePostgres {
		pool, err := store.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		users = pg
	}

	// ── Images ───────────────────────────────────────────────
	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	// ── Rate limiting ────────────────────────────────────────
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute)
	} else {
		local := ratelimit.NewLocalLimiter(cfg.RateLimitPerMinute)
		go local.Run(ctx, time.Minute)
		limiter = local
	}

	// ── Metrics ──────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Auth ─────────────────────────────────────────────────
	issuer := auth.NewIssuer([]byte(cfg.SecretKey))
	carrier := auth.NewCarrier([]byte(cfg.CookieSecretKey), auth.DefaultCookieOptions(cfg.IsProduction(), cfg.CookieTTL))
	svc := auth.NewService(users, images, auth.NewHasher(cfg.BcryptCost), issuer,
		auth.TokenTTLs{Access: cfg.AccessTokenTTL, Refresh: cfg.RefreshTokenTTL}, log)
	rp := httpx.NewResponder(cfg.IsProduction(), log)

	// ── Router ───────────────────────────────────────────────
	a := &app{
		cfg:      cfg,
		log:      log,
		rp:       rp,
		metrics:  m,
		limiter:  limiter,
		gates:    middleware.NewGates(issuer, carrier, users, rp, m),
		auth:     auth.NewHandler(svc, carrier),
		users:    user.NewHandler(users, images, cfg.MaxUploadBytes, log),
		projects: project.NewHandler(mongoStore, images, auth.NewPeeker(carrier, issuer), cfg.MaxUploadBytes, log),
		comments: comment.NewHandler(mongoStore, users, log),
		likes:    like.NewHandler(mongoStore, users),
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "backend listening", "port", cfg.Port, "env", cfg.Env, "user_store", cfg.UserStore, "image_store", cfg.ImageStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func migrate(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	mongoClient, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		return err
	}
	defer disconnectMongo(mongoClient, log)
	if err := store.NewMongoStore(mongoClient.Database(cfg.MongoDB)).EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info(ctx, "mongo indexes ensured")

	if cfg.UserStore != config.UserStorePostgres {
		return nil
	}
	pool, err := store.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := store.NewPostgresStore(pool).Migrate(ctx); err != nil {
		return err
	}
	log.Info(ctx, "postgres migrations applied")
	return nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (imageStore, error) {
	if cfg.ImageStore == config.ImageStoreS3 {
		return store.NewS3Store(ctx, cfg.S3Region, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.ImagePublicBaseURL)
	}
	return store.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
		cfg.MinioBucket, cfg.ImagePublicBaseURL, cfg.MinioUseSSL)
}

func disconnectMongo(c *mongo.Client, log logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Disconnect(ctx); err != nil {
		log.Warn(ctx, "mongo disconnect", "err", err)
	}
}
