package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
	"github.com/ukcompliance/complianceengine/internal/logutil"
)

// envPrefix is the prefix viper requires on every environment override,
// e.g. CE_CHUNK_WORKERS for ChunkWorkers.
const envPrefix = "CE"

// Manager loads Settings from a TOML file discovered via XDG config
// directories, then lets CE_-prefixed environment variables override
// any individual key.
type Manager struct {
	logger        logutil.LoggerInterface
	emitter       auditlog.Emitter
	userConfigDir string
	sysConfigDirs []string
	settings      *Settings
	viperInst     *viper.Viper
}

// NewManager constructs a Manager. A nil emitter degrades to a no-op
// audit sink.
func NewManager(logger logutil.LoggerInterface, emitter auditlog.Emitter) *Manager {
	userConfigDir := filepath.Join(xdg.ConfigHome, AppName)

	var sysConfigDirs []string
	for _, dir := range xdg.ConfigDirs {
		sysConfigDirs = append(sysConfigDirs, filepath.Join(dir, AppName))
	}

	if emitter == nil {
		emitter = auditlog.NewNoopEmitter()
	}

	return &Manager{
		logger:        logger,
		emitter:       emitter,
		userConfigDir: userConfigDir,
		sysConfigDirs: sysConfigDirs,
		settings:      DefaultSettings(),
		viperInst:     viper.New(),
	}
}

// Settings returns the currently loaded configuration.
func (m *Manager) Settings() *Settings {
	return m.settings
}

// GetUserConfigDir returns the user-specific configuration directory.
func (m *Manager) GetUserConfigDir() string {
	return m.userConfigDir
}

// GetSystemConfigDirs returns the system-wide configuration directories,
// in descending precedence order.
func (m *Manager) GetSystemConfigDirs() []string {
	return m.sysConfigDirs
}

// setViperDefaults seeds viper with DefaultSettings so that an absent
// config file and absent env vars still produce a fully populated
// Settings on Unmarshal.
func (m *Manager) setViperDefaults(v *viper.Viper) {
	defaults := DefaultSettings()
	v.SetDefault("overall_deadline_ms", defaults.OverallDeadlineMs)
	v.SetDefault("gate_deadline_ms", defaults.GateDeadlineMs)
	v.SetDefault("chunk_threshold_bytes", defaults.ChunkThresholdBytes)
	v.SetDefault("chunk_size_bytes", defaults.ChunkSizeBytes)
	v.SetDefault("chunk_overlap_bytes", defaults.ChunkOverlapBytes)
	v.SetDefault("chunk_workers", defaults.ChunkWorkers)
	v.SetDefault("cache_ttl_s", defaults.CacheTTLSeconds)
	v.SetDefault("cache_max_entries", defaults.CacheMaxEntries)
	v.SetDefault("cache_max_bytes", defaults.CacheMaxBytes)
	v.SetDefault("cb_failure_threshold", defaults.CBFailureThreshold)
	v.SetDefault("cb_timeout_s", defaults.CBTimeoutSeconds)
	v.SetDefault("cb_success_threshold", defaults.CBSuccessThreshold)
	v.SetDefault("max_iterations", defaults.MaxIterations)
	v.SetDefault("max_text_bytes", defaults.MaxTextBytes)
	v.SetDefault("max_active_modules", defaults.MaxActiveModules)
}

// bindEnv wires CE_-prefixed environment variables onto every known
// key, so CE_CHUNK_WORKERS=8 overrides chunk_workers regardless of
// whether a config file set it.
func (m *Manager) bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	keys := []string{
		"overall_deadline_ms", "gate_deadline_ms",
		"chunk_threshold_bytes", "chunk_size_bytes", "chunk_overlap_bytes", "chunk_workers",
		"cache_ttl_s", "cache_max_entries", "cache_max_bytes", "external_cache_url",
		"cb_failure_threshold", "cb_timeout_s", "cb_success_threshold",
		"max_iterations", "max_text_bytes", "max_active_modules",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Load reads config.toml from the user and system config directories
// (user takes precedence), applies CE_-prefixed environment overrides,
// and unmarshals into Settings. A missing config file is not an error:
// defaults and env overrides still apply.
func (m *Manager) Load() error {
	v := m.viperInst
	v.SetConfigType("toml")
	v.SetConfigName(strings.TrimSuffix(ConfigFilename, filepath.Ext(ConfigFilename)))

	m.setViperDefaults(v)
	m.bindEnv(v)

	for i := len(m.sysConfigDirs) - 1; i >= 0; i-- {
		v.AddConfigPath(m.sysConfigDirs[i])
	}
	v.AddConfigPath(m.userConfigDir)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if m.logger != nil {
				m.logger.Info("no configuration file found, using defaults and environment overrides")
			}
			m.emitter.Emit(auditlog.Event{
				EventType: auditlog.EventConfigLoaded,
				Detail:    map[string]interface{}{"source": "defaults"},
			})
			return m.unmarshal(v)
		}
		return fmt.Errorf("config: reading config file: %w", err)
	}

	if m.logger != nil {
		m.logger.Debug("loaded configuration from %s", v.ConfigFileUsed())
	}
	m.emitter.Emit(auditlog.Event{
		EventType: auditlog.EventConfigLoaded,
		Detail:    map[string]interface{}{"source": v.ConfigFileUsed()},
	})
	return m.unmarshal(v)
}

func (m *Manager) unmarshal(v *viper.Viper) error {
	settings := DefaultSettings()
	if err := v.Unmarshal(settings); err != nil {
		return fmt.Errorf("config: unmarshaling settings: %w", err)
	}
	m.settings = settings
	return nil
}
