// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/source"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Search all sources and print the deduplicated records",
	Long: `Collect runs only the ingestion half of a digest. Records from every enabled
source are filtered to the lookback window, deduplicated by identifier, and
printed as a table, JSON, or CSL-YAML. No model is called and nothing is sent.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Bool("json", false, "output records as JSON")
	collectCmd.Flags().Bool("csl", false, "output records as CSL-YAML")
	collectCmd.MarkFlagsMutuallyExclusive("json", "csl")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := digestConfig(viper.GetViper(), loadedSecrets.Get)
	p := newPipeline(cfg, logger)

	records, removed, err := p.Collect(cmd.Context(), cfg.LookbackDays)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	jsonOut, _ := cmd.Flags().GetBool("json")
	cslOut, _ := cmd.Flags().GetBool("csl")
	switch {
	case jsonOut:
		return source.FormatJSON(records, out)
	case cslOut:
		return source.FormatCSL(records, out)
	default:
		source.FormatTable(records, removed, out)
		return nil
	}
}
