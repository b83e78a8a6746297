// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound call.
type HTTPConfig struct {
	// Timeout bounds each request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the NCBI E-utilities adapter.
type PubMedConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Topic is passed verbatim as the ESearch term, so boolean syntax works
	// (e.g. "multiple myeloma OR plasma cell myeloma").
	Topic string `json:"topic" yaml:"topic"`

	// MaxResults caps the number of PMIDs requested (retmax, default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// APIKey raises the NCBI rate limit when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email and Tool identify the caller to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// ClinicalTrialsConfig holds settings for the ClinicalTrials.gov adapter.
type ClinicalTrialsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Topic is the query.term value.
	Topic string `json:"topic" yaml:"topic"`

	// PageSize caps the number of studies requested (default 20).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the length of the generated report (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// SummarizerConfig holds settings for the report generation step.
type SummarizerConfig struct {
	AIConfig `yaml:",inline"`

	// Language is the language the report is written in (default "Simplified Chinese").
	Language string `json:"language" yaml:"language"`

	// Domain describes the research area the assistant reports on.
	Domain string `json:"domain" yaml:"domain"`

	// Themes are the headings research progress is grouped under.
	Themes []string `json:"themes,omitempty" yaml:"themes,omitempty"`
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	// OTLPEndpoint is an OTLP/HTTP traces URL. Empty disables export.
	OTLPEndpoint string `json:"otlp_endpoint,omitempty" yaml:"otlp_endpoint,omitempty"`
}

// DigestConfig groups everything a digest run needs apart from mail
// credentials, which are resolved separately from the environment.
type DigestConfig struct {
	HTTPConfig `yaml:",inline"`

	// LookbackDays is the size of the recency window (default 7).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days"`

	// Subject is the email subject line.
	Subject string `json:"subject" yaml:"subject"`

	PubMed         PubMedConfig         `json:"pubmed" yaml:"pubmed"`
	ClinicalTrials ClinicalTrialsConfig `json:"clinicaltrials" yaml:"clinicaltrials"`
	Summarizer     SummarizerConfig     `json:"summarizer" yaml:"summarizer"`
	Telemetry      TelemetryConfig      `json:"telemetry" yaml:"telemetry"`
}
