// Package config holds the server's ambient settings: workspace root, cache
// tuning, and version metadata, populated from `initialize`'s
// InitializationOptions with an optional on-disk override file (§A.3).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

// DefaultCacheCapacity is the in-memory LRU's document capacity (§4.7).
const DefaultCacheCapacity = 50

// DefaultDebounceMillis is the dirty-set debounce window, in milliseconds
// (§4.8).
const DefaultDebounceMillis = 100

// DefaultOverrideFile is the project-level override file checked for at the
// workspace root, read the way tunaq's config loader reads its own
// TOML-backed project file.
const DefaultOverrideFile = ".rho-lsp.toml"

// Config is the server's ambient settings, the new-domain analogue of the
// teacher's Config/ContainerConfig struct-of-settings shape.
type Config struct {
	WorkspaceRootPath string
	CacheDir          string
	CacheCapacityN    int
	DebounceMillis    int
	ServerVersionStr  string
}

// fileOverride is the shape of an optional .rho-lsp.toml project file.
type fileOverride struct {
	CacheDir       string `toml:"cache_dir"`
	CacheCapacity  int    `toml:"cache_capacity"`
	DebounceMillis int    `toml:"debounce_millis"`
}

// NewConfig constructs a Config with spec defaults.
func NewConfig() *Config {
	return &Config{
		CacheCapacityN:   DefaultCacheCapacity,
		DebounceMillis:   DefaultDebounceMillis,
		ServerVersionStr: "0.1.0",
	}
}

// ApplyInitializationOptions reads params.InitializationOptions (an
// untyped `any` coming off the wire) the same defensive way the teacher's
// `server.initialize` reads its own InitializationOptions map: every field
// is optional, and an absent or wrongly-typed key is silently ignored
// rather than rejected.
func (c *Config) ApplyInitializationOptions(opts any) {
	m, ok := opts.(map[string]any)
	if !ok {
		return
	}
	if v, ok := m["cache_dir"]; ok {
		if s, ok := v.(string); ok && s != "" {
			c.CacheDir = s
		}
	}
	if v, ok := m["cache_capacity"]; ok {
		if n, ok := asInt(v); ok && n > 0 {
			c.CacheCapacityN = n
		}
	}
	if v, ok := m["debounce_millis"]; ok {
		if n, ok := asInt(v); ok && n > 0 {
			c.DebounceMillis = n
		}
	}
}

// LoadProjectOverride reads DefaultOverrideFile from the workspace root, if
// present, and applies any settings it specifies. A missing file is not an
// error; a malformed one is logged and ignored (§7 CacheIOFailure policy:
// degrade, never abort startup over a config file).
func (c *Config) LoadProjectOverride() {
	logger := commonlog.GetLoggerf("rho-lsp.config")
	if c.WorkspaceRootPath == "" {
		return
	}

	path := filepath.Join(c.WorkspaceRootPath, DefaultOverrideFile)
	if _, err := os.Stat(path); err != nil {
		return
	}

	var override fileOverride
	if _, err := toml.DecodeFile(path, &override); err != nil {
		logger.Warningf("could not load project override %s: %v", path, err)
		return
	}

	if override.CacheDir != "" {
		c.CacheDir = override.CacheDir
	}
	if override.CacheCapacity > 0 {
		c.CacheCapacityN = override.CacheCapacity
	}
	if override.DebounceMillis > 0 {
		c.DebounceMillis = override.DebounceMillis
	}
	logger.Infof("applied project override from %s", path)
}

// CacheCapacity returns the configured in-memory LRU capacity.
func (c *Config) CacheCapacity() int {
	if c.CacheCapacityN <= 0 {
		return DefaultCacheCapacity
	}
	return c.CacheCapacityN
}

// DebounceWindow returns the configured dirty-set debounce window.
func (c *Config) DebounceWindow() time.Duration {
	millis := c.DebounceMillis
	if millis <= 0 {
		millis = DefaultDebounceMillis
	}
	return time.Duration(millis) * time.Millisecond
}

// WorkspaceRoot returns the workspace root path, defaulting to "." when
// unset (no initialize params supplied one).
func (c *Config) WorkspaceRoot() string {
	if c.WorkspaceRootPath == "" {
		return "."
	}
	return c.WorkspaceRootPath
}

// ServerVersion returns the server's reported version string.
func (c *Config) ServerVersion() string {
	return c.ServerVersionStr
}

// PersistentCacheDir returns the base directory the on-disk cache lives
// under, defaulting to a dot-directory inside the workspace root when no
// explicit CacheDir override was given.
func (c *Config) PersistentCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return filepath.Join(c.WorkspaceRoot(), ".rho-lsp-cache"), nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
