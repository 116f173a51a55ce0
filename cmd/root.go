package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HeorhiiKortunov/CoreTask/cmd/users"
	"github.com/HeorhiiKortunov/CoreTask/internal/config"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "coretask",
	Short: "CoreTask multi-tenant task tracking server",
	Long: `CoreTask serves a REST API for companies to manage users, projects,
tasks and comments. Every company is an isolated tenant.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Init(cfg.Log.Format, cfg.Log.Level)
		return nil
	},
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a YAML/JSON/TOML config file")
	flags.String("db-url", "", "Database connection URL (env: CORETASK_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: CORETASK_SERVER_ADDR)")
	flags.String("server-url", "", "Public base URL used in invitation links (env: CORETASK_SERVER_URL)")
	flags.Bool("debug", false, "Enable debug logging (env: CORETASK_DEBUG)")

	for key, flag := range map[string]string{
		"database_url": "db-url",
		"server_addr":  "server-addr",
		"server_url":   "server-url",
		"debug":        "debug",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
