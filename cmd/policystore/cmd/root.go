package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/policystore/internal/core/config"
	"github.com/solatis/policystore/internal/core/db"
	"github.com/solatis/policystore/internal/core/logging"
	"github.com/solatis/policystore/internal/core/metrics"
	"github.com/solatis/policystore/internal/core/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Version is the release reported by serve.
const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	table      string
	logLevel   string
	logFormat  string
)

// Set by PersistentPreRunE for every subcommand.
var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "policystore",
	Short:         "Relational storage for casbin policy rules",
	Long:          `policystore keeps casbin policy and grouping rules in PostgreSQL, MySQL or SQLite and serves them over gRPC.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := resolveConfig(cmd.Flags())
		if err != nil {
			return err
		}

		l, err := logging.New(loaded.Log.Level, loaded.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		cfg, logger = loaded, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path, postgres://... or mysql://...)")
	rootCmd.PersistentFlags().StringVar(&table, "table", store.DefaultTable, "policy table name, optionally schema qualified")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

// resolveConfig loads the config file and environment, applies the flags
// that were set, then validates the result once.
func resolveConfig(flags *pflag.FlagSet) (*config.Config, error) {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := []struct {
		flag string
		dest *string
	}{
		{"db-url", &loaded.Database.URL},
		{"table", &loaded.Database.Table},
		{"log-level", &loaded.Log.Level},
		{"log-format", &loaded.Log.Format},
	}
	for _, o := range overrides {
		if !flags.Changed(o.flag) {
			continue
		}
		v, err := flags.GetString(o.flag)
		if err != nil {
			return nil, err
		}
		*o.dest = v
	}

	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loaded, nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// openStore opens the configured database and a provisioned store on it.
// The caller closes the returned database.
func openStore(ctx context.Context, m *metrics.Metrics) (*sqlx.DB, *store.Store, error) {
	database, err := db.Open(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(database, cfg.Database.Table, store.WithLogger(logger), store.WithMetrics(m))
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	if err := st.EnsureTable(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to provision policy table: %w", err)
	}
	return database, st, nil
}
