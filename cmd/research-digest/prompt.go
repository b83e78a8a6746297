// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/digest"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt a run would send to the model",
	Long: `Prompt collects records exactly as run does and prints the rendered prompt.
Use it to review what the model will see before spending tokens.`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg := digestConfig(viper.GetViper(), loadedSecrets.Get)
	p := newPipeline(cfg, logger)

	records, _, err := p.Collect(cmd.Context(), cfg.LookbackDays)
	if err != nil {
		return err
	}
	prompt, err := digest.BuildPrompt(records, p.Prompt)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}
