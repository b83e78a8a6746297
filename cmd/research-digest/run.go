// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/mail"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, summarize, and email this week's digest",
	Long: `Run executes the full digest: it searches every enabled source over the
lookback window, deduplicates the results, asks the model for a report, and
emails it to REPORT_EMAIL_TO.

Mail settings (SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM,
REPORT_EMAIL_TO) are read from the environment or from .secrets/ and are
checked before any source is queried. With --dry-run the report is printed
instead of sent and mail settings are not required.`,
	RunE: runDigest,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "print the report instead of emailing it")
	rootCmd.AddCommand(runCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	cfg := digestConfig(viper.GetViper(), loadedSecrets.Get)

	sum, err := digest.NewAnthropicSummarizer(cfg.Summarizer.AIConfig, cfg.Timeout)
	if err != nil {
		return err
	}

	p := newPipeline(cfg, logger)
	p.Summarizer = sum
	if !dryRun {
		mc, err := mail.LoadConfig(loadedSecrets.Lookup)
		if err != nil {
			return err
		}
		p.Mailer = mail.NewSender(mc, cfg.Timeout, logger)
	}

	res, err := p.Run(cmd.Context(), cfg.LookbackDays)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, res.Report)
		return nil
	}
	fmt.Fprintln(out, "OK: report generated and sent.")
	return nil
}
