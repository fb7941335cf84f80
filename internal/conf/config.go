// config.go: settings struct and functions to load and save the settings.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/campustrail/campustrail/internal/errors"
)

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name string // instance name used in reports
	Log  struct {
		Level string // slog level: debug, info, warn, error
	}
}

// DataSettings locates the input snapshot and the optional sqlite store.
type DataSettings struct {
	Dir   string // directory holding the seven source CSV files
	Store string // path to the sqlite snapshot store
}

// TimelineSettings tunes timeline assembly.
type TimelineSettings struct {
	InactivityDays int // whole-day gap above which the timeline is flagged as patchy
}

// AnomalySettings tunes the anomaly detector. GapDays is intentionally
// stricter than TimelineSettings.InactivityDays; they are separate signals.
type AnomalySettings struct {
	GapDays             int     // hard inactivity threshold in whole days
	SpikeSigma          float64 // standard deviations for daily volume spikes
	ExcludeLabLocations bool    // treat lab-booking locations as known-allowed
}

// Settings is the full application configuration.
type Settings struct {
	Debug    bool // true to enable debug output
	Main     MainSettings
	Data     DataSettings
	Timeline TimelineSettings
	Anomaly  AnomalySettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, create one with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a default config file to the first config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("error unmarshaling defaults: %w", err)
	}
	if err := SaveYAMLConfig(configPath, settings); err != nil {
		return err
	}

	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the config search paths in priority order:
// the working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	userConfig, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(userConfig, "campustrail"))
	}
	return paths, nil
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig serializes settings to a YAML config file.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("path", configPath).
			Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", configPath).
			Build()
	}
	return nil
}
