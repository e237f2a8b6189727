// hotreload.go: dynamic configuration reload via Argus.
//
// Grounded on agilira/balios's hot-reload.go: the same
// UniversalConfigWatcherWithConfig wiring, the same
// read-under-RWMutex/replace-wholesale update pattern, and the same
// "only the safely-reloadable fields actually change" caveat — here that
// means log level and I/O deadlines, never the listen address (changing
// that requires restarting the process, same as balios's MaxSize).
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotReloader watches a configuration file and keeps a ServerConfig
// up to date as it changes, without requiring the server to restart.
type HotReloader struct {
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  ServerConfig

	// OnReload is invoked after a successful reload, with the config as it
	// was before and after the change. Optional; must be fast and
	// non-blocking, per the teacher's own caveat on this callback shape.
	OnReload func(oldConfig, newConfig ServerConfig)
}

// HotReloaderOptions configures NewHotReloader.
type HotReloaderOptions struct {
	// ConfigPath is the file to watch. Supports whatever formats Argus's
	// UniversalConfigWatcher supports (JSON, YAML, TOML, HCL, INI,
	// Properties).
	ConfigPath string

	// PollInterval is how often to check ConfigPath for changes. Default:
	// 1 second, floored at 100ms, matching the teacher's HotConfigOptions.
	PollInterval time.Duration

	// OnReload is called after every successful reload.
	OnReload func(oldConfig, newConfig ServerConfig)
}

// NewHotReloader constructs a HotReloader seeded with DefaultServerConfig
// and starts Argus watching opts.ConfigPath. The watcher is created
// running; call Stop when the server shuts down.
func NewHotReloader(opts HotReloaderOptions) (*HotReloader, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hr := &HotReloader{
		OnReload: opts.OnReload,
		config:   DefaultServerConfig(),
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(
		opts.ConfigPath,
		hr.handleConfigChange,
		argus.Config{PollInterval: opts.PollInterval},
	)
	if err != nil {
		return nil, err
	}
	hr.watcher = watcher

	return hr, nil
}

// Start begins watching, if not already running.
func (hr *HotReloader) Start() error {
	if hr.watcher.IsRunning() {
		return nil
	}
	return hr.watcher.Start()
}

// Stop stops watching the configuration file.
func (hr *HotReloader) Stop() error {
	return hr.watcher.Stop()
}

// Current returns the most recently loaded ServerConfig.
func (hr *HotReloader) Current() ServerConfig {
	hr.mu.RLock()
	defer hr.mu.RUnlock()
	return hr.config
}

func (hr *HotReloader) handleConfigChange(data map[string]interface{}) {
	hr.mu.Lock()
	oldConfig := hr.config
	newConfig := parseServerConfig(data)
	hr.config = newConfig
	hr.mu.Unlock()

	if hr.OnReload != nil {
		hr.OnReload(oldConfig, newConfig)
	}
}

// parseServerConfig extracts a ServerConfig from Argus's decoded file
// contents, falling back to defaults for anything missing or malformed.
// read_timeout and write_timeout are read only as duration strings
// ("5s", "250ms"); a bare number, int or float64, is ignored.
func parseServerConfig(data map[string]interface{}) ServerConfig {
	cfg := DefaultServerConfig()

	section, ok := data["server"].(map[string]interface{})
	if !ok {
		section = data
	}

	if level, ok := section["log_level"].(string); ok && level != "" {
		cfg.LogLevel = level
	}
	if d, ok := parseDuration(section["read_timeout"]); ok {
		cfg.ReadTimeout = d
	}
	if d, ok := parseDuration(section["write_timeout"]); ok {
		cfg.WriteTimeout = d
	}

	_ = cfg.Validate()
	return cfg
}

// parseDuration extracts a time.Duration from a string value, in the
// style of balios's hot-reload.go helper of the same name.
func parseDuration(value interface{}) (time.Duration, bool) {
	str, ok := value.(string)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, false
	}
	return d, true
}
