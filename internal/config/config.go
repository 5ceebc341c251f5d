// Package config defines the compliance engine's typed settings object:
// timing budgets, cache tuning, circuit breaker parameters, chunker
// limits, the module catalogue, and per-provider API keys. Values load
// from an optional TOML file discovered via XDG config directories,
// overridden by CE_-prefixed environment variables, per §6 of the
// specification.
package config

import "time"

// AppName names the XDG config subdirectory and the environment
// variable prefix.
const AppName = "complianceengine"

// ConfigFilename is the TOML file name searched for in each config
// directory.
const ConfigFilename = "config.toml"

// Settings is the engine's full typed configuration surface.
type Settings struct {
	// Timing budgets, milliseconds in the file/env form, converted to
	// time.Duration for in-process use.
	OverallDeadlineMs int `mapstructure:"overall_deadline_ms" toml:"overall_deadline_ms"`
	GateDeadlineMs    int `mapstructure:"gate_deadline_ms" toml:"gate_deadline_ms"`

	// Chunker.
	ChunkThresholdBytes int `mapstructure:"chunk_threshold_bytes" toml:"chunk_threshold_bytes"`
	ChunkSizeBytes      int `mapstructure:"chunk_size_bytes" toml:"chunk_size_bytes"`
	ChunkOverlapBytes   int `mapstructure:"chunk_overlap_bytes" toml:"chunk_overlap_bytes"`
	ChunkWorkers        int `mapstructure:"chunk_workers" toml:"chunk_workers"`

	// Result cache.
	CacheTTLSeconds   int    `mapstructure:"cache_ttl_s" toml:"cache_ttl_s"`
	CacheMaxEntries   int    `mapstructure:"cache_max_entries" toml:"cache_max_entries"`
	CacheMaxBytes     int    `mapstructure:"cache_max_bytes" toml:"cache_max_bytes"`
	ExternalCacheURL  string `mapstructure:"external_cache_url" toml:"external_cache_url"`

	// Circuit breaker, applied per provider dependency name.
	CBFailureThreshold int `mapstructure:"cb_failure_threshold" toml:"cb_failure_threshold"`
	CBTimeoutSeconds   int `mapstructure:"cb_timeout_s" toml:"cb_timeout_s"`
	CBSuccessThreshold int `mapstructure:"cb_success_threshold" toml:"cb_success_threshold"`

	// Synthesis.
	MaxIterations int `mapstructure:"max_iterations" toml:"max_iterations"`

	// Resource caps.
	MaxTextBytes    int `mapstructure:"max_text_bytes" toml:"max_text_bytes"`
	MaxActiveModules int `mapstructure:"max_active_modules" toml:"max_active_modules"`

	// Module catalogue: module_id -> enabled. Absent entries default to
	// enabled; an explicit "false" disables a module at startup.
	Modules map[string]bool `mapstructure:"modules" toml:"modules"`

	// Providers: provider name -> API key, loaded from env in practice
	// (CE_PROVIDERS_<NAME>_API_KEY) rather than committed to a file.
	Providers map[string]ProviderSettings `mapstructure:"providers" toml:"providers"`
}

// ProviderSettings holds the per-provider outbound LLM call settings.
type ProviderSettings struct {
	APIKey   string `mapstructure:"api_key" toml:"api_key"`
	Endpoint string `mapstructure:"endpoint" toml:"endpoint"`
}

// Default values, per the specification's worked examples and the
// package-level defaults already established by the engine, cache,
// chunk, breaker, gate, and synthesis packages.
const (
	DefaultOverallDeadlineMs = 30_000
	DefaultGateDeadlineMs    = 5_000

	DefaultChunkThresholdBytes = 50 * 1024
	DefaultChunkSizeBytes      = 50 * 1024
	DefaultChunkOverlapBytes   = 500
	DefaultChunkWorkers        = 4

	DefaultCacheTTLSeconds = 3600
	DefaultCacheMaxEntries = 10000
	DefaultCacheMaxBytes   = 64 * 1024 * 1024

	DefaultCBFailureThreshold = 5
	DefaultCBTimeoutSeconds   = 30
	DefaultCBSuccessThreshold = 2

	DefaultMaxIterations = 5

	DefaultMaxTextBytes     = 10 * 1024 * 1024
	DefaultMaxActiveModules = 16
)

// DefaultSettings returns a Settings populated with the specification's
// defaults.
func DefaultSettings() *Settings {
	return &Settings{
		OverallDeadlineMs: DefaultOverallDeadlineMs,
		GateDeadlineMs:    DefaultGateDeadlineMs,

		ChunkThresholdBytes: DefaultChunkThresholdBytes,
		ChunkSizeBytes:      DefaultChunkSizeBytes,
		ChunkOverlapBytes:   DefaultChunkOverlapBytes,
		ChunkWorkers:        DefaultChunkWorkers,

		CacheTTLSeconds: DefaultCacheTTLSeconds,
		CacheMaxEntries: DefaultCacheMaxEntries,
		CacheMaxBytes:   DefaultCacheMaxBytes,

		CBFailureThreshold: DefaultCBFailureThreshold,
		CBTimeoutSeconds:   DefaultCBTimeoutSeconds,
		CBSuccessThreshold: DefaultCBSuccessThreshold,

		MaxIterations: DefaultMaxIterations,

		MaxTextBytes:     DefaultMaxTextBytes,
		MaxActiveModules: DefaultMaxActiveModules,

		Modules:   map[string]bool{},
		Providers: map[string]ProviderSettings{},
	}
}

// OverallDeadline, GateDeadline, and CacheTTL convert the file/env
// millisecond and second fields into time.Duration for in-process use.
func (s *Settings) OverallDeadline() time.Duration {
	return time.Duration(s.OverallDeadlineMs) * time.Millisecond
}

func (s *Settings) GateDeadline() time.Duration {
	return time.Duration(s.GateDeadlineMs) * time.Millisecond
}

func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

func (s *Settings) CBTimeout() time.Duration {
	return time.Duration(s.CBTimeoutSeconds) * time.Second
}

// ModuleEnabled reports whether moduleID is enabled, defaulting to
// enabled for modules with no explicit catalogue entry.
func (s *Settings) ModuleEnabled(moduleID string) bool {
	enabled, ok := s.Modules[moduleID]
	if !ok {
		return true
	}
	return enabled
}
