package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chepyr/go-board-notes/internal/auth"
	"github.com/chepyr/go-board-notes/internal/config"
	"github.com/chepyr/go-board-notes/internal/db"
	"github.com/chepyr/go-board-notes/internal/handlers"
	"github.com/chepyr/go-board-notes/internal/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("auth-service failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var migrate bool
	serve := func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), migrate)
	}

	root := &cobra.Command{
		Use:           "auth-service",
		Short:         "Registration, sign-in and password reset",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  serve,
	}
	root.PersistentFlags().BoolVar(&migrate, "migrate", false, "apply the database schema before serving")
	root.AddCommand(serveCmd)
	return root
}

func runServe(ctx context.Context, migrate bool) error {
	cfg, err := config.Load(config.AuthService)
	if err != nil {
		return err
	}
	cfg.ConfigureLogging()

	dbConn, err := db.Connect(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.WithError(err).Error("error closing database connection")
		}
	}()
	if migrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
	}

	redisClient, err := server.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	authService := auth.NewService(
		db.NewUserRepository(dbConn),
		auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		redisClient,
		auth.LogMailer{},
	)
	authService.ResetTTL = cfg.ResetTokenTTL
	authService.ResetURL = cfg.ResetURL

	// allow RATE_LIMIT login attempts per window from the same IP
	limiter := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	defer limiter.Stop()

	handler := &handlers.Handler{
		Auth:           authService,
		Verifier:       authService.Verifier(),
		RateLimiter:    limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.AuthRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, srv)
}
