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
	"github.com/chepyr/go-board-notes/internal/service"
	"github.com/chepyr/go-board-notes/internal/store"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("boards-service failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var migrate bool
	serve := func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), migrate)
	}

	root := &cobra.Command{
		Use:           "boards-service",
		Short:         "Boards, cards, notes and sharing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  serve,
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "apply the database schema before serving")
	root.Flags().BoolVar(&migrate, "migrate", false, "apply the database schema before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.BoardsService)
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			dbConn, err := db.Connect(cfg.DBDriver, cfg.DSN)
			if err != nil {
				return err
			}
			defer dbConn.Close()
			if err := db.Migrate(cmd.Context(), dbConn); err != nil {
				return err
			}
			log.Info("schema is up to date")
			return nil
		},
	}
	root.AddCommand(serveCmd, migrateCmd)
	return root
}

func runServe(ctx context.Context, migrate bool) error {
	cfg, err := config.Load(config.BoardsService)
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

	// Redis is optional here: without it listings are not cached and
	// signed-out tokens stay valid until they expire.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		if redisClient, err = server.OpenRedis(ctx, cfg.RedisURL); err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL not set, running without cache and token revocation")
	}

	hub := handlers.NewWSHub()
	defer hub.Close()

	records := store.NewCache(store.NewSQLStore(dbConn), redisClient, cfg.CacheTTL)
	// allow max 5 websocket connection attempts per second from the same IP
	limiter := handlers.NewRateLimiter(5, time.Second)
	defer limiter.Stop()

	handler := &handlers.Handler{
		Boards:         service.NewBoards(records, hub),
		Verifier:       auth.NewVerifier(auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), redisClient),
		RateLimiter:    limiter,
		WSHub:          hub,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.BoardRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, srv)
}
