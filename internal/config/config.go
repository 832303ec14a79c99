// Package config provides configuration management for the rawkvm agent.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"rawkvm/internal/logging"
)

var logger = logging.Child("[config]")

// Config represents the application configuration
type Config struct {
	// General contains general application settings
	General GeneralConfig `json:"general"`

	// Agent contains the connection to the forwarding host
	Agent AgentConfig `json:"agent"`

	// Injection selects the delivery paths for received input
	Injection InjectionConfig `json:"injection"`

	// Prereq holds the runtime redistributable requirement
	Prereq PrereqConfig `json:"prereq"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	// LogLevel is one of "debug", "info", "warn", "error"
	LogLevel string `json:"log_level"`

	// ShowTray shows the status icon in the system tray
	ShowTray bool `json:"show_tray"`
}

// AgentConfig describes where forwarded input comes from
type AgentConfig struct {
	// HostAddr is the Address:Port of the forwarding host
	HostAddr string `json:"host_addr,omitempty"`

	// UDPEnabled enables the UDP input receiver
	UDPEnabled bool `json:"udp_enabled"`
}

// InjectionConfig selects the delivery paths
type InjectionConfig struct {
	// RawEnabled tries the raw win32u path first
	RawEnabled bool `json:"raw_enabled"`

	// FallbackEnabled uses SendInput when the raw path declines an event
	FallbackEnabled bool `json:"fallback_enabled"`
}

// PrereqConfig holds the minimum runtime redistributable version
type PrereqConfig struct {
	RequiredMajor uint32 `json:"required_major"`
	RequiredMinor uint32 `json:"required_minor"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			ShowTray: true,
		},
		Agent: AgentConfig{
			UDPEnabled: true,
		},
		Injection: InjectionConfig{
			RawEnabled:      true,
			FallbackEnabled: true,
		},
		Prereq: PrereqConfig{
			RequiredMajor: 14,
			RequiredMinor: 40,
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "disable": true,
}

// Validate checks the configuration for inconsistent values
func (c *Config) Validate() error {
	var errs []error
	if !validLogLevels[c.General.LogLevel] {
		errs = append(errs, fmt.Errorf("general.log_level: unknown level %q", c.General.LogLevel))
	}
	if c.Agent.HostAddr != "" {
		if _, _, err := net.SplitHostPort(c.Agent.HostAddr); err != nil {
			errs = append(errs, fmt.Errorf("agent.host_addr: %w", err))
		}
	}
	if !c.Injection.RawEnabled && !c.Injection.FallbackEnabled {
		errs = append(errs, errors.New("injection: at least one of raw_enabled or fallback_enabled must be set"))
	}
	return errors.Join(errs...)
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath), nil
}

// NewManagerAt creates a manager for an explicit config file path
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return m.configPath
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "rawkvm")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "rawkvm")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "rawkvm")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file keeps the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}
	m.config = cfg
	if m.onChanged != nil {
		m.onChanged()
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	logger.Infof("saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.config
}

// Set validates and replaces the configuration
func (m *Manager) Set(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = &config
	cb := m.onChanged
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
	return nil
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}
