package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HeorhiiKortunov/CoreTask/cmd/cmdutil"
	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/bunx"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/mail"
	"github.com/HeorhiiKortunov/CoreTask/internal/server"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/comment"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/company"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/iam"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/invitation"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/project"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/task"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/user"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
	"github.com/HeorhiiKortunov/CoreTask/internal/telemetry"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CoreTask API server",
	Long:  `Starts the HTTP server exposing the REST API and the health endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTel)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				logging.Op().Warn("telemetry shutdown failed", "error", err)
			}
		}()

		meter := telemetry.Meter()
		serverMetrics, err := telemetry.NewServerMetrics(meter)
		if err != nil {
			return fmt.Errorf("create server metrics: %w", err)
		}
		dbMetrics, err := telemetry.NewDatabaseMetrics(meter)
		if err != nil {
			return fmt.Errorf("create database metrics: %w", err)
		}
		authMetrics, err := telemetry.NewAuthMetrics(meter)
		if err != nil {
			return fmt.Errorf("create auth metrics: %w", err)
		}
		cacheMetrics, err := telemetry.NewCacheMetrics(meter)
		if err != nil {
			return fmt.Errorf("create cache metrics: %w", err)
		}

		// Connect to database
		stack, err := cmdutil.Open(cfg, bunx.WithQueryHook(bunx.NewMetricsHook(dbMetrics)))
		if err != nil {
			return err
		}
		defer stack.Close()
		logging.Op().Info("connected to database")

		if serveMigrate {
			if err := applyMigrations(ctx, stack.Migrator()); err != nil {
				return err
			}
		}

		// Tenant cache, optionally fanned out over Redis
		cacheOpts := []cache.Option{cache.WithSize(cfg.Cache.Size), cache.WithMetrics(cacheMetrics)}
		if cfg.Cache.RedisURL != "" {
			broadcaster, err := cache.NewRedisBroadcasterFromURL(ctx, cfg.Cache.RedisURL, cfg.Cache.Channel)
			if err != nil {
				return fmt.Errorf("connect cache broadcaster: %w", err)
			}
			defer broadcaster.Close()
			cacheOpts = append(cacheOpts, cache.WithBroadcaster(broadcaster))
		}
		tenantCache := cache.New(cacheOpts...)

		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()
		go func() {
			if err := tenantCache.Listen(listenCtx); err != nil {
				logging.Op().Error("cache invalidation listener stopped", "error", err)
			}
		}()

		codec, err := auth.NewTokenCodec([]byte(cfg.JWT.Secret), cfg.JWT.TTL, auth.WithIssuer(cfg.JWT.Issuer))
		if err != nil {
			return fmt.Errorf("create token codec: %w", err)
		}
		validator, err := validation.NewValidator()
		if err != nil {
			return fmt.Errorf("compile request schemas: %w", err)
		}

		services := server.Services{
			Login:     iam.NewService(iam.NewCredentialAuthenticator(stack.Users), codec, authMetrics),
			Companies: company.NewService(stack.Companies, tenantCache),
			Users:     user.NewService(stack.Users, tenantCache),
			Projects:  project.NewService(stack.Projects, tenantCache),
			Tasks:     task.NewService(stack.Tasks, stack.Projects, stack.Users, tenantCache),
			Comments:  comment.NewService(stack.Comments, stack.Tasks, stack.Users, tenantCache),
			Invitations: invitation.NewService(stack.Invitations, mail.NewLogSender(), tenantCache, cfg.ServerURL,
				invitation.WithTTL(cfg.Invitation.TTL)),
		}

		corsOpts := server.DefaultCORSOptions()
		corsOpts.AllowedOrigins = cfg.CORS.AllowedOrigins

		handler, err := server.NewH2CHandler(server.RouterOptions{
			Services:      services,
			Validator:     validator,
			Authenticator: iam.NewBearerAuthenticator(auth.NewResolver(codec)),
			AuthRecorder:  authMetrics,
			ServerMetrics: serverMetrics,
			CORSOptions:   &corsOpts,
		})
		if err != nil {
			return fmt.Errorf("build router: %w", err)
		}

		// Create HTTP server
		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			logging.Op().Info("starting server", "addr", cfg.ServerAddr, "url", cfg.ServerURL)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logging.Op().Info("shutting down gracefully", "signal", sig.String())

			// Graceful shutdown with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logging.Op().Info("server stopped")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
