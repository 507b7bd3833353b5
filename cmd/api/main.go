package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/memory"
	myPostgresRepo "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/storage/objectstore"
	myGrpc "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/grpc"
	transport "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http"
	httpmw "github.com/Miraines/MoonyAndStarry/social-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/auth/service"
	socialsvc "github.com/Miraines/MoonyAndStarry/social-service/internal/app/social/service"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/social-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/server"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const healthInterval = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must("", "").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel, cfg.LogFormat)
	defer zapLog.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	probes := []myGrpc.Probe{{Name: "postgres", Check: sqlDB.PingContext}}

	var tokenRepo repo.TokenRepo
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisCli.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zapLog.Fatal("failed to connect to redis", zap.Error(err))
		}
		tokenRepo = myRedisRepo.NewRedisTokenRepo(redisCli)
		probes = append(probes, myGrpc.Probe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisCli.Ping(ctx).Err() },
		})
	} else {
		zapLog.Warn("REDIS_ADDRESS is empty, token revocations are kept in process memory")
		tokenRepo = memory.NewTokenRepo()
	}

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	var avatars socialsvc.AvatarStore
	if cfg.S3Enabled() {
		store, err := objectstore.NewAvatarStore(context.Background(), objectstore.Options{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			zapLog.Fatal("failed to init object storage", zap.Error(err))
		}
		avatars = store
	}

	validate := appsvc.NewValidator()
	hasher := password.NewHasher(cfg.PasswordPepper, nil)
	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	articleRepo := myPostgresRepo.NewPostgresArticleRepo(db)
	commentRepo := myPostgresRepo.NewPostgresCommentRepo(db)

	svc := appsvc.New(userRepo, tokenRepo, jwtUtil, hasher, validate)

	healthSrv := health.NewServer()
	prober := myGrpc.NewHealthProber(healthSrv, zapLog, probes...)

	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(transport.Deps{
		Auth:     svc,
		Accounts: socialsvc.NewAccountService(userRepo, hasher, avatars, validate),
		Articles: socialsvc.NewArticleService(articleRepo, commentRepo, userRepo, validate),
		Comments: socialsvc.NewCommentService(articleRepo, commentRepo, validate),
		Logger:   zapLog,
		Ready: func(ctx context.Context) error {
			for _, p := range probes {
				if err := p.Check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		Metrics:          httpmw.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer:         prometheus.DefaultGatherer,
		RateLimit:        cfg.RateLimit,
		RateLimitBurst:   cfg.RateLimitBurst,
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowCredentials,
		AvatarsEnabled:   avatars != nil,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartGRPCServer(ctx, cfg, healthSrv, zapLog)
	})

	g.Go(func() error {
		return prober.Run(ctx, healthInterval)
	})

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zapLog.Info("shutdown signal received")
	case <-ctx.Done():
		zapLog.Error("a server stopped unexpectedly, shutting down")
	}
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
