package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"reviewshelf/internal/app"
	"reviewshelf/internal/config"
	"reviewshelf/internal/oauth"
	"reviewshelf/internal/ratelimit"
	"reviewshelf/internal/server"
	"reviewshelf/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Redis:       redisClient,
		SessionTTL:  sessionTTL,
		JWTSecret:   cfg.JWTSecret,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trustedProxies, err := util.NewTrustedProxies(config.ParseTrustedProxies(cfg.TrustedProxyCIDRs))
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	var signinLimiter, registerLimiter *ratelimit.FixedWindowLimiter
	if redisClient != nil {
		if cfg.SignInRateLimitPerMinute > 0 {
			signinLimiter, err = ratelimit.NewFixedWindowLimiter(redisClient, "reviewshelf:ratelimit:signin", cfg.SignInRateLimitPerMinute, time.Minute)
			if err != nil {
				log.Fatalf("failed to init signin limiter: %v", err)
			}
		}
		if cfg.RegisterRateLimitPerMinute > 0 {
			registerLimiter, err = ratelimit.NewFixedWindowLimiter(redisClient, "reviewshelf:ratelimit:register", cfg.RegisterRateLimitPerMinute, time.Minute)
			if err != nil {
				log.Fatalf("failed to init register limiter: %v", err)
			}
		}
	}

	httpServer := server.New(server.Config{
		App: appCore,
		OAuth: oauth.NewClient(oauth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}),
		SecureCookies:   cfg.SecureCookies,
		SignInLimiter:   signinLimiter,
		RegisterLimiter: registerLimiter,
		TrustedProxies:  trustedProxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("review server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}
