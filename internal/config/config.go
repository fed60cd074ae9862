package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"eyra/internal/language"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Verification contains settings for the review workflow.
type Verification struct {
	// TrimEnabled controls whether accepted trim points are applied to the
	// stored waveform after a verdict is recorded.
	TrimEnabled bool `toml:"trim_enabled"`
	// FFmpeg is the binary used to cut audio. Defaults to "ffmpeg" on PATH.
	FFmpeg string `toml:"ffmpeg"`
	// MinFreeGiB is the minimum free space required on the data dir before
	// the daemon reports itself healthy.
	MinFreeGiB int `toml:"min_free_gib"`
	// Language is the default BCP 47 tag assigned to new collections.
	Language string `toml:"language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Eyra.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Verification: review workflow and audio trim settings
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Verification Verification `toml:"verification"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/eyra/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The boolean reports whether a file was
// found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("expand data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("expand log_dir: %w", err)
	}
	if strings.TrimSpace(c.Verification.FFmpeg) == "" {
		c.Verification.FFmpeg = defaultFFmpeg
	}
	if c.Verification.MinFreeGiB <= 0 {
		c.Verification.MinFreeGiB = defaultMinFreeGiB
	}
	if strings.TrimSpace(c.Verification.Language) == "" {
		c.Verification.Language = defaultLanguage
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// Validate reports configuration errors that would prevent daemon startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("config: data_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("config: log_dir is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Logging.Format)
	}
	if _, err := language.NormalizeTag(c.Verification.Language); err != nil {
		return fmt.Errorf("config: language: %w", err)
	}
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location inside the log dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "eyra.db")
}

// LogFilePath returns the daemon log file location inside the log dir.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "eyra.log")
}

// SocketPath returns the IPC socket location inside the log dir.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "eyrad.sock")
}

// LockPath returns the daemon lock file location inside the log dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "eyrad.lock")
}

// FFmpegBinary returns the configured ffmpeg binary name or path.
func (c *Config) FFmpegBinary() string {
	return c.Verification.FFmpeg
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
