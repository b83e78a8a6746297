// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultLookbackDays = 7
	defaultMaxResults   = 20
	defaultUserAgent    = "research-digest/0.1"
	defaultSubject      = "多发性骨髓瘤｜每周研究进展周报"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("secrets_dir", ".secrets/")
	v.SetDefault("log.level", "info")
	v.SetDefault("lookback_days", defaultLookbackDays)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("subject", defaultSubject)

	v.SetDefault("pubmed.enabled", true)
	v.SetDefault("pubmed.topic", "multiple myeloma OR plasma cell myeloma")
	v.SetDefault("pubmed.max_results", defaultMaxResults)
	v.SetDefault("pubmed.tool", "research-digest")

	v.SetDefault("clinicaltrials.enabled", true)
	v.SetDefault("clinicaltrials.topic", "multiple myeloma")
	v.SetDefault("clinicaltrials.page_size", defaultMaxResults)

	v.SetDefault("summarizer.model", digest.DefaultModel)
	v.SetDefault("summarizer.max_tokens", digest.DefaultMaxTokens)
	v.SetDefault("summarizer.language", digest.DefaultLanguage)
	v.SetDefault("summarizer.domain", digest.DefaultDomain)
}

// lookupFunc resolves credentials the way secrets.Store does. Tests replace it.
type lookupFunc func(key string) string

// digestConfig assembles the run configuration from v. Credentials that are
// not set in v come from lookup.
func digestConfig(v *viper.Viper, lookup lookupFunc) types.DigestConfig {
	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	lookback := v.GetInt("lookback_days")
	if lookback < 0 {
		lookback = defaultLookbackDays
	}

	cfg := types.DigestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: v.GetString("user_agent"),
		},
		LookbackDays: lookback,
		Subject:      v.GetString("subject"),
		PubMed: types.PubMedConfig{
			Enabled:    v.GetBool("pubmed.enabled"),
			Topic:      v.GetString("pubmed.topic"),
			MaxResults: v.GetInt("pubmed.max_results"),
			APIKey:     firstSet(v.GetString("pubmed.api_key"), lookup("NCBI_API_KEY")),
			Email:      firstSet(v.GetString("pubmed.email"), lookup("NCBI_EMAIL")),
			Tool:       v.GetString("pubmed.tool"),
		},
		ClinicalTrials: types.ClinicalTrialsConfig{
			Enabled:  v.GetBool("clinicaltrials.enabled"),
			Topic:    v.GetString("clinicaltrials.topic"),
			PageSize: v.GetInt("clinicaltrials.page_size"),
		},
		Summarizer: types.SummarizerConfig{
			AIConfig: types.AIConfig{
				Model:     v.GetString("summarizer.model"),
				APIKey:    firstSet(v.GetString("summarizer.api_key"), lookup("ANTHROPIC_API_KEY")),
				MaxTokens: v.GetInt("summarizer.max_tokens"),
			},
			Language: v.GetString("summarizer.language"),
			Domain:   v.GetString("summarizer.domain"),
			Themes:   v.GetStringSlice("summarizer.themes"),
		},
		Telemetry: types.TelemetryConfig{
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
		},
	}
	return cfg
}

func firstSet(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}

// buildJobs returns one job per enabled source, PubMed first.
func buildJobs(cfg types.DigestConfig, log *zap.Logger) []digest.Job {
	client := &http.Client{Timeout: cfg.Timeout}

	var jobs []digest.Job
	if cfg.PubMed.Enabled {
		jobs = append(jobs, digest.Job{
			Adapter: &source.PubMedAdapter{
				Client:    client,
				UserAgent: cfg.UserAgent,
				APIKey:    cfg.PubMed.APIKey,
				Email:     cfg.PubMed.Email,
				Tool:      cfg.PubMed.Tool,
			},
			Topic:      cfg.PubMed.Topic,
			MaxResults: cfg.PubMed.MaxResults,
		})
	}
	if cfg.ClinicalTrials.Enabled {
		jobs = append(jobs, digest.Job{
			Adapter: &source.ClinicalTrialsAdapter{
				Client:    client,
				UserAgent: cfg.UserAgent,
				Logger:    log,
			},
			Topic:      cfg.ClinicalTrials.Topic,
			MaxResults: cfg.ClinicalTrials.PageSize,
		})
	}
	return jobs
}

// newPipeline builds a pipeline with sources only. Callers attach the
// summarizer and mailer they need.
func newPipeline(cfg types.DigestConfig, log *zap.Logger) *digest.Pipeline {
	return &digest.Pipeline{
		Jobs:    buildJobs(cfg, log),
		Logger:  log,
		Subject: cfg.Subject,
		Prompt: digest.PromptOptions{
			Language: cfg.Summarizer.Language,
			Domain:   cfg.Summarizer.Domain,
			Themes:   cfg.Summarizer.Themes,
		},
	}
}
