// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-digest CLI. It collects
// recent PubMed articles and ClinicalTrials.gov studies for a topic, has an
// LLM write a weekly report from them, and emails the report.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/internal/telemetry"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Store

	logger = zap.NewNop()

	shutdownTracing telemetry.ShutdownFunc
)

var rootCmd = &cobra.Command{
	Use:   "research-digest",
	Short: "Weekly research digest from PubMed and ClinicalTrials.gov",
	Long: `research-digest queries PubMed and ClinicalTrials.gov for recent items on a
topic, deduplicates them, asks an LLM to write a structured weekly report
grounded in those items, and emails the report.

Run it from a scheduler (cron, CI) once a week. Each invocation is
independent and keeps no state between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s

		l, err := telemetry.NewLogger(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		logger = l

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("Loaded secrets", zap.Strings("keys", keys))
		}

		shutdown, err := telemetry.SetupTracing(cmd.Context(), viper.GetString("telemetry.otlp_endpoint"), version)
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-digest.yaml or ~/.config/research-digest/research-digest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().Int("lookback-days", 0, "size of the recency window in days (default 7)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))         //nolint:errcheck // flag exists
	viper.BindPFlag("lookback_days", rootCmd.PersistentFlags().Lookup("lookback-days")) //nolint:errcheck // flag exists
}

// loadEnvFiles loads .env.local and then .env. Variables already set in the
// environment win, and a missing file is not an error.
func loadEnvFiles() error {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func initConfig() {
	if err := loadEnvFiles(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-digest"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// execute runs the command tree and then flushes spans and logs. The flush
// happens on failure too, since cobra skips post-run hooks when RunE fails.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	finish()
	return err
}

func finish() {
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals
	if shutdownTracing == nil {
		return
	}
	shutdown := shutdownTracing
	shutdownTracing = nil
	if err := shutdown(context.Background()); err != nil {
		logger.Warn("Flushing traces failed", zap.Error(err))
	}
}

func main() {
	if err := execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
