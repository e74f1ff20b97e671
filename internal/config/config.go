package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	dirName  = ".shellcfg"
	fileName = "config.toml"

	DefaultPollTimeoutMS = 0
	maxPollTimeoutMS     = 1000
)

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	colorProfiles = []string{"auto", "truecolor", "ansi256", "ansi", "none"}
)

// Config is the contents of ~/.shellcfg/config.toml. Every field has a
// default, so a missing file is not an error.
type Config struct {
	DataDir       string              `toml:"data_dir"`
	DBPath        string              `toml:"db_path"`
	LogFile       string              `toml:"log_file"`
	LogLevel      string              `toml:"log_level"`
	InitialView   string              `toml:"initial_view"`
	PollTimeoutMS int                 `toml:"poll_timeout_ms"`
	ColorProfile  string              `toml:"color_profile"`
	Theme         map[string]string   `toml:"theme"`
	Keys          map[string][]string `toml:"keys"`
}

// Default returns the configuration used when no file exists. Paths derived
// from the data directory are filled in by Load.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		InitialView:   "main",
		PollTimeoutMS: DefaultPollTimeoutMS,
		ColorProfile:  "auto",
	}
}

// DefaultPath returns ~/.shellcfg/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Load reads the config file at path, or the default path when path is
// empty. A missing file yields the defaults (graceful degradation); a file
// that exists but does not parse or validate is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Keep defaults
	case err != nil:
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
	}

	if err := cfg.resolvePaths(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths expands ~ and fills in paths left empty, relative to the
// directory holding the config file.
func (c *Config) resolvePaths(configDir string) error {
	var err error
	if c.DataDir == "" {
		c.DataDir = configDir
	}
	if c.DataDir, err = expandHome(c.DataDir); err != nil {
		return err
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "shellcfg.db")
	}
	if c.DBPath, err = expandHome(c.DBPath); err != nil {
		return err
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "shellcfg.log")
	}
	if c.LogFile, err = expandHome(c.LogFile); err != nil {
		return err
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Validate checks values that have a fixed set of choices or a range.
func (c *Config) Validate() error {
	if !contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q: want one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.PollTimeoutMS < 0 || c.PollTimeoutMS > maxPollTimeoutMS {
		return fmt.Errorf("invalid poll_timeout_ms %d: want 0-%d", c.PollTimeoutMS, maxPollTimeoutMS)
	}
	if !contains(colorProfiles, strings.ToLower(c.ColorProfile)) {
		return fmt.Errorf("invalid color_profile %q: want one of %s", c.ColorProfile, strings.Join(colorProfiles, ", "))
	}
	if c.InitialView == "" {
		return fmt.Errorf("initial_view must not be empty")
	}
	return nil
}

// PollTimeout is how long one input poll may wait for a key. Zero, the
// default, makes every poll return at once.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMS) * time.Millisecond
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
