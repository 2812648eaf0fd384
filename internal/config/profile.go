// Package config resolves client credentials and connection settings from
// YAML profiles and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir   = ".aiguardrails"
	DefaultProfileFile = "config.yaml"
)

// Profile is the on-disk shape of a client configuration file.
type Profile struct {
	BaseURL       string `yaml:"base_url"`
	AppID         string `yaml:"app_id"`
	AppSecret     string `yaml:"app_secret"`
	AppSecretFile string `yaml:"app_secret_file"`
	Timeout       string `yaml:"timeout"`

	TLSCertFile   string `yaml:"tls_cert_file"`
	TLSKeyFile    string `yaml:"tls_key_file"`
	TLSCAFile     string `yaml:"tls_ca_file"`
	TLSServerName string `yaml:"tls_server_name"`
}

// Settings are the resolved connection settings handed to the SDK.
type Settings struct {
	BaseURL string
	AppID   string
	Secret  string
	Timeout time.Duration

	TLSCertFile   string
	TLSKeyFile    string
	TLSCAFile     string
	TLSServerName string
}

// DefaultProfilePath returns ~/.aiguardrails/config.yaml, or "" when the home
// directory cannot be determined.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigDir, DefaultProfileFile)
}

// LoadProfile parses the YAML profile at path. A missing file yields an empty
// profile when optional is true.
func LoadProfile(path string, optional bool) (Profile, error) {
	var profile Profile
	if strings.TrimSpace(path) == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return profile, nil
		}
		return profile, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}

// Resolve layers the environment over the profile. Empty environment values
// leave the profile value in place; the timeout falls back to fallbackTimeout.
func Resolve(profile Profile, fallbackTimeout time.Duration) (Settings, error) {
	settings := Settings{
		BaseURL: strings.TrimSpace(profile.BaseURL),
		AppID:   strings.TrimSpace(profile.AppID),
		Secret:  strings.TrimSpace(profile.AppSecret),
		Timeout: fallbackTimeout,

		TLSCertFile:   strings.TrimSpace(profile.TLSCertFile),
		TLSKeyFile:    strings.TrimSpace(profile.TLSKeyFile),
		TLSCAFile:     strings.TrimSpace(profile.TLSCAFile),
		TLSServerName: strings.TrimSpace(profile.TLSServerName),
	}

	if profile.AppSecretFile != "" {
		data, err := ReadSecretFile(profile.AppSecretFile)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read app_secret_file: %w", err)
		}
		settings.Secret = strings.TrimSpace(string(data))
	}
	if raw := strings.TrimSpace(profile.Timeout); raw != "" {
		dur, err := time.ParseDuration(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid profile timeout %q: %w", raw, err)
		}
		settings.Timeout = dur
	}

	settings.BaseURL = GetEnv(EnvBaseURL, settings.BaseURL)
	settings.AppID = GetEnv(EnvAppID, settings.AppID)
	secret, err := ResolveEnvValue(EnvAppSecret)
	if err != nil {
		return Settings{}, err
	}
	if secret != "" {
		settings.Secret = secret
	}
	settings.Timeout = GetDurationEnv(EnvTimeout, settings.Timeout)
	settings.TLSCertFile = GetEnv(EnvTLSCertFile, settings.TLSCertFile)
	settings.TLSKeyFile = GetEnv(EnvTLSKeyFile, settings.TLSKeyFile)
	settings.TLSCAFile = GetEnv(EnvTLSCAFile, settings.TLSCAFile)
	settings.TLSServerName = GetEnv(EnvTLSServerName, settings.TLSServerName)

	return settings, nil
}
