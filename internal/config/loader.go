package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/authfetch"
	projectConfigDir = ".authfetch"
	configFileName   = "config.yaml"
)

// LoadConfig loads the authfetch configuration by layering default, user, and
// project settings.
func LoadConfig() (Config, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. Determine user-specific configuration path
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// Log this error but don't fail; user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	// 3. Determine project-specific configuration path
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		// Log this error but don't fail; project config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

// LoadConfigFromPath loads the configuration from an explicit file, layered
// over the defaults. Used by the --config flag; user and project files are
// not consulted.
func LoadConfigFromPath(path string) (Config, error) {
	config := GetDefaultConfig()
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(config, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay Config) Config {
	mergedConfig := base

	// Merge Auth settings (overlay overrides base)
	if len(overlay.Auth.Mechanisms) > 0 {
		mergedConfig.Auth.Mechanisms = overlay.Auth.Mechanisms
	}
	if overlay.Auth.SPN != "" {
		mergedConfig.Auth.SPN = overlay.Auth.SPN
	}
	if overlay.Auth.Krb5Conf != "" {
		mergedConfig.Auth.Krb5Conf = overlay.Auth.Krb5Conf
	}

	// Merge Fetch settings
	if overlay.Fetch.Timeout != 0 {
		mergedConfig.Fetch.Timeout = overlay.Fetch.Timeout
	}
	if overlay.Fetch.MaxBodyBytes != 0 {
		mergedConfig.Fetch.MaxBodyBytes = overlay.Fetch.MaxBodyBytes
	}
	if overlay.Fetch.InsecureSkipVerify {
		mergedConfig.Fetch.InsecureSkipVerify = true
	}

	// Merge Server settings
	if overlay.Server.Transport != "" {
		mergedConfig.Server.Transport = overlay.Server.Transport
	}
	if overlay.Server.Host != "" {
		mergedConfig.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		mergedConfig.Server.Port = overlay.Server.Port
	}

	return mergedConfig
}
