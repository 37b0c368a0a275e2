package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrSnakeDoc/multiverse/internal/app"
	"github.com/MrSnakeDoc/multiverse/internal/config"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
	"github.com/MrSnakeDoc/multiverse/internal/version"
)

var cfgFile string

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ multiverse: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "multiverse",
		Short:         "Rick and Morty character browser backend",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newExportCmd(), newImportCmd())
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.Bool("log-pretty", defaults.GetBool("log.pretty"), "Colourised console logs instead of JSON")
	flags.String("storage", defaults.GetString("storage.backend"), "Storage backend (memory, sqlite, redis)")
	flags.String("sqlite-path", defaults.GetString("storage.sqlite_path"), "SQLite database path")
	flags.String("redis-addr", defaults.GetString("redis.addr"), "Redis address for the redis backend")
	flags.String("favorites-mode", defaults.GetString("favorites.mode"), "Favorites persistence (ids, records)")
	flags.Duration("search-debounce", defaults.GetDuration("search.debounce"), "Quiet period before a search term settles")
	flags.String("seed", defaults.GetString("seed.file"), "YAML backup imported into empty storage at startup")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.pretty", "log-pretty")
	bindFlag(cmd, "storage.backend", "storage")
	bindFlag(cmd, "storage.sqlite_path", "sqlite-path")
	bindFlag(cmd, "redis.addr", "redis-addr")
	bindFlag(cmd, "favorites.mode", "favorites-mode")
	bindFlag(cmd, "search.debounce", "search-debounce")
	bindFlag(cmd, "seed.file", "seed")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

// setup loads the validated config and builds the logger.
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog), nil
}

func runServer(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
