package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aqasim81/schema-migrate/internal/config"
	"github.com/aqasim81/schema-migrate/internal/logging"
	"github.com/aqasim81/schema-migrate/internal/runner"
)

const version = "0.2.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// appLogger is the run's logger, set during PersistentPreRunE.
var appLogger *zap.Logger //nolint:gochecknoglobals // shared with subcommands like AppConfig

// rootCmd is the base command for the migrate CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "migrate",
	Version: version,
	Short:   "Ledger-backed SQL schema migration runner",
	Long: `migrate applies and reverses versioned SQL migrations against PostgreSQL
or SQLite. Each migration file holds an up block and a down block; applied
migrations are recorded in the schema_migrations table, and every migration
runs in its own transaction together with its ledger write.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		return setupLogger(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "path to a .env file with MIGRATE_* variables")
	rootCmd.PersistentFlags().String("database-url", "", "database URL (postgres://... or sqlite://path)")
	rootCmd.PersistentFlags().String("migrations-dir", "", "path to migration files")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (auto, console, json, logfmt)")
}

// Execute runs the root command. Called from main.
// SIGINT and SIGTERM cancel the command's context, which rolls back the
// migration in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		logFailure(err)
		os.Exit(1)
	}
}

// logFailure reports err on the run's logger, or on stderr when the logger
// could not be built.
func logFailure(err error) {
	if appLogger == nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return
	}

	fields := []zap.Field{zap.Error(err)}

	var me *runner.MigrationError
	if errors.As(err, &me) {
		fields = append(fields, zap.String("migration", me.ID), zap.String("direction", string(me.Direction)))
	}

	appLogger.Error("Command failed", fields...)
	_ = appLogger.Sync()
}

// loadConfig loads configuration with precedence: flag > env > file.
// The .env file only fills variables the environment does not already set.
func loadConfig(cmd *cobra.Command) error {
	envPath, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envPath, cmd.Flags().Changed("env-file")); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := config.MergeEnv(cfg); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	mergeFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL, _ = cmd.Flags().GetString("database-url")
	}

	if cmd.Flags().Changed("migrations-dir") {
		cfg.MigrationsDir, _ = cmd.Flags().GetString("migrations-dir")
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
	}
}

// setupLogger builds the logger for this invocation from AppConfig.
// Logs go to stderr so stdout carries only command output.
func setupLogger(cmd *cobra.Command) error {
	log, err := logging.New(cmd.ErrOrStderr(), logging.Config{
		Level:  AppConfig.LogLevel,
		Format: AppConfig.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	appLogger = log.With(zap.String("run_id", uuid.NewString()))

	return nil
}

// logger returns appLogger, or a no-op logger before PersistentPreRunE has run.
func logger() *zap.Logger {
	if appLogger == nil {
		return zap.NewNop()
	}

	return appLogger
}
