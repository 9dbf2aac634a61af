package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults written to a fresh config file
const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultLanguage     = "en"
	DefaultHotkey       = "super+c"
	DefaultHotkeyMode   = "hold"
	DefaultInjectMethod = "type"
)

// Config is the client side configuration stored as YAML
type Config struct {
	APIURL   string `yaml:"api_url"`
	APIToken string `yaml:"api_token"`
	Language string `yaml:"language"`

	// Dictation settings, read by voicetype-dictate
	Hotkey       string `yaml:"hotkey"`
	HotkeyMode   string `yaml:"hotkey_mode"`
	InjectMethod string `yaml:"inject_method"`
	MuteOutput   bool   `yaml:"mute_output"`
}

// DefaultConfig returns the configuration used when no file exists yet
func DefaultConfig() Config {
	return Config{
		APIURL:       DefaultAPIURL,
		Language:     DefaultLanguage,
		Hotkey:       DefaultHotkey,
		HotkeyMode:   DefaultHotkeyMode,
		InjectMethod: DefaultInjectMethod,
		MuteOutput:   true,
	}
}

// ConfigPath is $XDG_CONFIG_HOME/voice-type/config.yaml, falling back to the
// platform config directory.
func ConfigPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locating config directory: %w", err)
		}
	}
	return filepath.Join(dir, "voice-type", "config.yaml"), nil
}

// LoadConfig reads path. A missing file is created with the defaults.
// Absent or empty fields in an existing file fall back to the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := SaveConfig(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading client config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	fallback(&cfg.APIURL, DefaultAPIURL)
	fallback(&cfg.Language, DefaultLanguage)
	fallback(&cfg.Hotkey, DefaultHotkey)
	fallback(&cfg.HotkeyMode, DefaultHotkeyMode)
	fallback(&cfg.InjectMethod, DefaultInjectMethod)
	return cfg, nil
}

func fallback(value *string, def string) {
	if *value == "" {
		*value = def
	}
}

// SaveConfig writes cfg to path, creating parent directories. The file holds
// a token so it is only readable by the owner.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding client config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing client config: %w", err)
	}
	return nil
}
