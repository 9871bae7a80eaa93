package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config represents the AirDevs console configuration
type Config struct {
	// Backend settings
	BackendURL string `json:"backend_url" env:"AIRDEVS_BACKEND_URL"`
	Model      string `json:"model" env:"AIRDEVS_MODEL"`

	// UI preferences
	Theme string `json:"theme" env:"AIRDEVS_THEME"`
	Debug bool   `json:"debug" env:"AIRDEVS_DEBUG"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BackendURL: "http://localhost:8000",
		Model:      "auto",
		Theme:      "dark",
		Debug:      false,
	}
}

// Manager handles configuration loading and saving
type Manager struct {
	workingDir string
	configPath string
	config     *Config
}

// NewManager creates a new configuration manager
func NewManager(workingDir string) *Manager {
	dir := filepath.Join(workingDir, ".airdevs")
	return &Manager{
		workingDir: workingDir,
		configPath: filepath.Join(dir, "config.json"),
		config:     DefaultConfig(),
	}
}

// Load reads the configuration from disk, creating defaults if needed.
// AIRDEVS_* environment variables override file values.
func (m *Manager) Load() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create .airdevs directory: %w", err)
	}

	if err := m.ensureGitignore(); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		// Write defaults so the file is there to edit, then still apply
		// environment overrides below.
		if err := m.Save(); err != nil {
			return err
		}
	} else {
		data, err := os.ReadFile(m.configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		var config Config
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}

		m.expandEnvVars(&config)
		m.config = &config
	}

	if err := env.Parse(m.config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// Set updates a configuration value and saves
func (m *Manager) Set(key, value string) error {
	switch key {
	case "backend_url":
		m.config.BackendURL = value
	case "model":
		m.config.Model = value
	case "theme":
		m.config.Theme = value
	case "debug":
		m.config.Debug = value == "true"
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return m.Save()
}

// ensureGitignore creates a .gitignore in .airdevs/ with smart defaults
func (m *Manager) ensureGitignore() error {
	gitignorePath := filepath.Join(filepath.Dir(m.configPath), ".gitignore")

	if _, err := os.Stat(gitignorePath); !os.IsNotExist(err) {
		return nil // Already exists
	}

	gitignoreContent := `# AirDevs data directory .gitignore
#
# Config is committed; logs and temporary files are not.

*.log
*.tmp
.DS_Store

cache/
tmp/

!config.json
!.gitignore
`

	return os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644)
}

// expandEnvVars expands environment variables in config values
func (m *Manager) expandEnvVars(config *Config) {
	config.BackendURL = m.expandString(config.BackendURL)
	config.Model = m.expandString(config.Model)
	config.Theme = m.expandString(config.Theme)
}

// expandString expands environment variables in a string
// Supports $VAR and ${VAR} syntax
func (m *Manager) expandString(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		// Return original if env var not found
		return match
	})
}
