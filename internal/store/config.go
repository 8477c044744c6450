package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	configDirEnv   = "TASKPAD_CONFIG_DIR"
	configFileName = "config.json"

	DefaultAssistModel  = "gemini-1.5-flash"
	DefaultAssistKeyEnv = "GEMINI_API_KEY"
)

type GlobalConfig struct {
	// APIURL overrides the remote service base url (".../api").
	APIURL string `json:"apiUrl,omitempty"`
	// LogLevel is a logrus level name; empty means info.
	LogLevel string `json:"logLevel,omitempty"`

	Assist  *AssistConfig  `json:"assist,omitempty"`
	Breaker *BreakerConfig `json:"breaker,omitempty"`
	TUI     *TUIConfig     `json:"tui,omitempty"`
}

type AssistConfig struct {
	Model string `json:"model,omitempty"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"apiKeyEnv,omitempty"`
}

type BreakerConfig struct {
	Enabled     bool   `json:"enabled"`
	Failures    uint32 `json:"failures,omitempty"`
	OpenSeconds int    `json:"openSeconds,omitempty"`
}

type TUIConfig struct {
	// Profile is the appearance profile id ("default", "mono").
	Profile string `json:"profile,omitempty"`
}

func (c *GlobalConfig) AssistModel() string {
	if c != nil && c.Assist != nil && strings.TrimSpace(c.Assist.Model) != "" {
		return strings.TrimSpace(c.Assist.Model)
	}
	return DefaultAssistModel
}

func (c *GlobalConfig) AssistKeyEnv() string {
	if c != nil && c.Assist != nil && strings.TrimSpace(c.Assist.APIKeyEnv) != "" {
		return strings.TrimSpace(c.Assist.APIKeyEnv)
	}
	return DefaultAssistKeyEnv
}

func (c *GlobalConfig) TUIProfile() string {
	if c != nil && c.TUI != nil && strings.TrimSpace(c.TUI.Profile) != "" {
		return strings.TrimSpace(c.TUI.Profile)
	}
	return "default"
}

// ConfigKeys lists the keys accepted by Get and Set, in display order.
var ConfigKeys = []string{
	"apiUrl",
	"logLevel",
	"assist.model",
	"assist.apiKeyEnv",
	"breaker.enabled",
	"breaker.failures",
	"breaker.openSeconds",
	"tui.profile",
}

// Get returns the stored value for key ("" when unset).
func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case "apiUrl":
		return c.APIURL, nil
	case "logLevel":
		return c.LogLevel, nil
	case "assist.model":
		if c.Assist == nil {
			return "", nil
		}
		return c.Assist.Model, nil
	case "assist.apiKeyEnv":
		if c.Assist == nil {
			return "", nil
		}
		return c.Assist.APIKeyEnv, nil
	case "breaker.enabled":
		if c.Breaker == nil {
			return "false", nil
		}
		return strconv.FormatBool(c.Breaker.Enabled), nil
	case "breaker.failures":
		if c.Breaker == nil || c.Breaker.Failures == 0 {
			return "", nil
		}
		return strconv.FormatUint(uint64(c.Breaker.Failures), 10), nil
	case "breaker.openSeconds":
		if c.Breaker == nil || c.Breaker.OpenSeconds == 0 {
			return "", nil
		}
		return strconv.Itoa(c.Breaker.OpenSeconds), nil
	case "tui.profile":
		if c.TUI == nil {
			return "", nil
		}
		return c.TUI.Profile, nil
	}
	return "", fmt.Errorf("unknown config key %q (expected one of: %s)", key, strings.Join(ConfigKeys, ", "))
}

// Set parses and stores value under key. An empty value clears it.
func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "apiUrl":
		c.APIURL = strings.TrimRight(value, "/")
	case "logLevel":
		c.LogLevel = strings.ToLower(value)
	case "assist.model", "assist.apiKeyEnv":
		if c.Assist == nil {
			c.Assist = &AssistConfig{}
		}
		if key == "assist.model" {
			c.Assist.Model = value
		} else {
			c.Assist.APIKeyEnv = value
		}
	case "breaker.enabled", "breaker.failures", "breaker.openSeconds":
		if c.Breaker == nil {
			c.Breaker = &BreakerConfig{}
		}
		switch key {
		case "breaker.enabled":
			if value == "" {
				c.Breaker.Enabled = false
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("breaker.enabled: %w", err)
			}
			c.Breaker.Enabled = b
		case "breaker.failures":
			if value == "" {
				c.Breaker.Failures = 0
				return nil
			}
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("breaker.failures: %w", err)
			}
			c.Breaker.Failures = uint32(n)
		default:
			if value == "" {
				c.Breaker.OpenSeconds = 0
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("breaker.openSeconds: invalid value %q", value)
			}
			c.Breaker.OpenSeconds = n
		}
	case "tui.profile":
		if c.TUI == nil {
			c.TUI = &TUIConfig{}
		}
		c.TUI.Profile = value
	default:
		return fmt.Errorf("unknown config key %q (expected one of: %s)", key, strings.Join(ConfigKeys, ", "))
	}
	return nil
}

// Values returns every known key with its current value.
func (c *GlobalConfig) Values() map[string]string {
	out := make(map[string]string, len(ConfigKeys))
	for _, k := range ConfigKeys {
		v, _ := c.Get(k)
		out[k] = v
	}
	return out
}

// ConfigDir resolves the config directory: TASKPAD_CONFIG_DIR, else ~/.taskpad.
func ConfigDir() (string, error) {
	// Keeps unit tests from touching ~/.taskpad.
	if v := strings.TrimSpace(os.Getenv(configDirEnv)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskpad"), nil
}

func ConfigPath(dir string) string {
	return filepath.Join(dir, configFileName)
}

// LoadConfig reads <dir>/config.json. A missing file yields an empty config.
func LoadConfig(dir string) (*GlobalConfig, error) {
	b, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigPath(dir), err)
	}
	return &cfg, nil
}

func SaveConfig(dir string, cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path := ConfigPath(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep a copy of the previous config; errors here never block the write.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Unique temp name so a CLI and a TUI writing at once never clobber each other.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
