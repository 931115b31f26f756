// Package settings manages persistent user settings for the newtroute CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Settings holds persistent user preferences. Flags and environment
// variables override them.
type Settings struct {
	// HarnessFile is the harness YAML used when --harness is not given
	HarnessFile string `json:"harness_file,omitempty"`

	// TablesDir holds ipv4.json and ipv6.json
	TablesDir string `json:"tables_dir,omitempty"`

	// GobgpAddress is the gobgp gRPC endpoint
	GobgpAddress string `json:"gobgp_address,omitempty"`

	// SSHUser and SSHKeyFile are used by provision --ssh
	SSHUser    string `json:"ssh_user,omitempty"`
	SSHKeyFile string `json:"ssh_key_file,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "newtroute_settings.json"
	}
	return filepath.Join(home, ".newtroute", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetTablesDir returns the tables directory (with fallback)
func (s *Settings) GetTablesDir() string {
	if s.TablesDir != "" {
		return s.TablesDir
	}
	return "."
}

// fields maps setting names, as typed on the command line, to their storage.
func (s *Settings) fields() map[string]*string {
	return map[string]*string{
		"harness_file":  &s.HarnessFile,
		"tables_dir":    &s.TablesDir,
		"gobgp_address": &s.GobgpAddress,
		"ssh_user":      &s.SSHUser,
		"ssh_key_file":  &s.SSHKeyFile,
	}
}

// Keys returns the setting names, sorted.
func Keys() []string {
	var s Settings
	keys := make([]string, 0, 5)
	for k := range s.fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the named setting.
func (s *Settings) Get(key string) (string, error) {
	f, ok := s.fields()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting: %s (valid: %v)", key, Keys())
	}
	return *f, nil
}

// Set changes the named setting.
func (s *Settings) Set(key, value string) error {
	f, ok := s.fields()[key]
	if !ok {
		return fmt.Errorf("unknown setting: %s (valid: %v)", key, Keys())
	}
	*f = value
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
