package main

import (
	"fmt"
	"os"

	"clonekit/internal/config"
	"clonekit/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clonekit",
	Short: "clonekit - deep clone dynamic value graphs",
	Long: `clonekit decodes YAML documents into dynamic value graphs and deep-clones
them. Shared references and cycles survive the copy: anchors and aliases in
the input come back as anchors and aliases in the output.

It also carries the small helpers that ship with the clone routine: kind
inspection, two sorting routines and a persistent key/value cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		if err := logging.Initialize(c.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		reqID := logging.NewRequestID()
		logging.Boot("clonekit %s (request %s)", cmd.Name(), reqID)
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("request_id", reqID))

		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
		logging.CloseAudit()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")

	cloneCmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "Re-clone files when they change")
	cloneCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: yaml or json (default from config)")

	sortCmd.Flags().BoolVar(&sortASCII, "ascii", false, "Always sort by code point, even numeric input")

	cacheSetCmd.Flags().BoolVar(&cacheRaw, "raw", false, "Store VALUE verbatim instead of as JSON")
	cacheCmd.AddCommand(cacheSetCmd)
	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheRemoveCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheKeysCmd)

	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
