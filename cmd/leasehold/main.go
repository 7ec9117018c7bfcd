package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/leasehold/internal/auth"
	"github.com/gosuda/leasehold/internal/config"
	"github.com/gosuda/leasehold/internal/ledger"
	"github.com/gosuda/leasehold/internal/notice"
	"github.com/gosuda/leasehold/internal/server"
	"github.com/gosuda/leasehold/internal/store/postgres"
	redisstore "github.com/gosuda/leasehold/internal/store/redis"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "leasehold",
		Short:         "Rent ledger and pay-or-quit notice service for property managers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("leasehold failed")
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("database", cfg.Database.DBName).Msg("schema applied")
			return nil
		},
	}
}

// loadConfig reads the environment and installs the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*postgres.Store, error) {
	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}
	return postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}

	// Connect to PostgreSQL.
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	authSvc := auth.NewService(store.Managers(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	jurisdictions := notice.NewRegistry()
	if _, ok := jurisdictions.Lookup(cfg.Ledger.DefaultJurisdiction); !ok {
		return fmt.Errorf("LEASEHOLD_DEFAULT_JURISDICTION=%q: unknown jurisdiction (have %v)",
			cfg.Ledger.DefaultJurisdiction, jurisdictions.Codes())
	}

	ledgerSvc := ledger.NewService(store.Tenants(), store.RentRecords(), store.Audit(), pubsub, loc)

	notices := notice.NewEngine(
		notice.Repositories{
			Tenants:  store.Tenants(),
			Records:  store.RentRecords(),
			Notices:  store.Notices(),
			Managers: store.Managers(),
			Audit:    store.Audit(),
		},
		ledgerSvc,
		pubsub,
		jurisdictions,
		notice.Policy{
			AllowMultipleActiveNotices: cfg.Ledger.AllowMultipleActiveNotices,
			DefaultJurisdiction:        cfg.Ledger.DefaultJurisdiction,
		},
		loc,
	)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, store, pubsub, server.Services{
		Auth:    authSvc,
		Ledger:  ledgerSvc,
		Notices: notices,
	})

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("timezone", loc.String()).
			Str("jurisdiction", cfg.Ledger.DefaultJurisdiction).
			Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
