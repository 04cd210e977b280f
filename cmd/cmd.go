package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-backend/internal/config"
	"social-backend/internal/handlers"
	"social-backend/internal/repository"
	"social-backend/internal/repository/memory"
	"social-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand creates the root command with the serve, migrate and client subcommands
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "social-backend",
		Short:         "Social network REST API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newMigrateCommand(&configPath))
	cmd.AddCommand(newClientCommand())

	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, inMemory)
			if err != nil {
				return err
			}
			setupLogger(cfg.Log.Level)
			return serve(cfg)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "memory", false, "keep all data in process memory instead of PostgreSQL")

	return cmd
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, false)
			if err != nil {
				return err
			}
			setupLogger(cfg.Log.Level)

			ctx := cmd.Context()
			db, err := repository.Connect(ctx, cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info().Msg("Database schema is up to date")
			return nil
		},
	}
}

// loadConfig loads and validates configuration; inMemory overrides the
// database section
func loadConfig(path string, inMemory bool) (*config.Config, error) {
	cfg, err := config.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if inMemory {
		cfg.Database.InMemory = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// stores bundles the repositories a server runs on
type stores struct {
	users         services.UserStore
	posts         services.PostStore
	notifications services.NotificationStore
	db            handlers.Pinger
	close         func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Database.InMemory {
		log.Warn().Msg("Using in-memory storage; data is lost on exit")
		db := memory.New()
		return &stores{
			users:         db.Users(),
			posts:         db.Posts(),
			notifications: db.Notifications(),
			close:         func() {},
		}, nil
	}

	db, err := repository.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Msg("Database connection established")

	return &stores{
		users:         repository.NewUserRepository(db),
		posts:         repository.NewPostRepository(db),
		notifications: repository.NewNotificationRepository(db),
		db:            db,
		close:         db.Close,
	}, nil
}

func serve(cfg *config.Config) error {
	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Initialize services
	wsHub := services.NewWSHub()
	notificationService := services.NewNotificationService(st.notifications, wsHub)
	if cfg.APNS.PushEnabled() {
		pusher, err := services.NewAPNSPusher(cfg.APNS, st.users)
		if err != nil {
			return err
		}
		notificationService.AddDeliverer(pusher)
		log.Info().Str("topic", cfg.APNS.Topic).Msg("APNs push enabled")
	}

	authService := services.NewAuthService(st.users, cfg.JWT.Secret)
	userService := services.NewUserService(st.users, st.posts, authService, notificationService)
	postService := services.NewPostService(st.posts, st.users, notificationService)
	searchService := services.NewSearchService(st.users, st.posts)

	var uploadService *services.UploadService
	if cfg.AWS.UploadsEnabled() {
		uploadService, err = services.NewUploadService(ctx, cfg.AWS)
		if err != nil {
			return err
		}
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Image uploads enabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Auth:           authService,
		Users:          userService,
		Posts:          postService,
		Notifications:  notificationService,
		Search:         searchService,
		Uploads:        uploadService,
		Hub:            wsHub,
		DB:             st.db,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	notificationService.Wait()

	log.Info().Msg("Server exited")
	return nil
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
