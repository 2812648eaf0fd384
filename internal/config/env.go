package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables read by Resolve. EnvAppSecret also honours a _FILE
// variant; see ResolveEnvValue.
const (
	EnvBaseURL        = "AIGUARDRAILS_BASE_URL"
	EnvAppID          = "AIGUARDRAILS_APP_ID"
	EnvAppSecret      = "AIGUARDRAILS_APP_SECRET"
	EnvTimeout        = "AIGUARDRAILS_TIMEOUT"
	EnvSecretFileRoot = "AIGUARDRAILS_SECRET_FILE_ROOT"

	EnvTLSCertFile   = "AIGUARDRAILS_TLS_CERT_FILE"
	EnvTLSKeyFile    = "AIGUARDRAILS_TLS_KEY_FILE"
	EnvTLSCAFile     = "AIGUARDRAILS_TLS_CA_FILE"
	EnvTLSServerName = "AIGUARDRAILS_TLS_SERVER_NAME"
)

// GetEnv returns the trimmed value of key, or defaultValue when it is empty.
func GetEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// ResolveEnvValue returns the value of key, preferring the contents of the
// file named by key+"_FILE" when that variable is set.
func ResolveEnvValue(key string) (string, error) {
	fileKey := key + "_FILE"
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		data, err := ReadSecretFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", fileKey, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(os.Getenv(key)), nil
}

// ReadSecretFile reads path, confined to EnvSecretFileRoot when that is set.
func ReadSecretFile(path string) ([]byte, error) {
	rootDir := strings.TrimSpace(os.Getenv(EnvSecretFileRoot))
	return readFileFromAllowedRoot(path, rootDir)
}

// GetDurationEnv parses key as a time.Duration. Unset, malformed and
// non-positive values yield fallback.
func GetDurationEnv(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	dur, err := time.ParseDuration(value)
	if err != nil || dur <= 0 {
		return fallback
	}
	return dur
}
