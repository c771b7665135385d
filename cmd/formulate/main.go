package main

import (
	"fmt"
	"os"

	"formulate/internal/config"
	"formulate/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	catalogURL string
	offline    bool
	verbose    bool

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "formulate",
	Short: "formulate - interactive formula editor with variable autocomplete",
	Long: `formulate edits arithmetic formulas that reference named variables.

Type a formula after the "= " prefix. Words are matched against the variable
catalog and can be inserted as chips; the result is recomputed on every edit.

Run without arguments to start the interactive editor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		// The editor owns the terminal, so it logs to a file.
		interactive := cmd == cmd.Root()
		logCfg := cfg.Logging
		if verbose {
			logCfg.Level = "debug"
			logCfg.DebugMode = true
		}
		logger, err = logging.New(logCfg, interactive)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logging.For(logger, logging.CategoryBoot).Debug("configuration loaded",
			zap.String("catalog", cfg.CatalogURL()),
			zap.Bool("offline", cfg.Catalog.Offline),
			zap.String("cache", cfg.Catalog.CachePath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive editor
		return runEditor(cmd.Context())
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&catalogURL, "catalog-url", "", "Catalog service base URL (or set FORMULATE_CATALOG_URL)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use only the cached catalog")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInfoCmd)

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the command line overrides.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if catalogURL != "" {
		c.Catalog.BaseURL = catalogURL
	}
	if offline {
		c.Catalog.Offline = true
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
