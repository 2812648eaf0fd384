package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvAppID, EnvAppSecret, EnvAppSecret + "_FILE", EnvTimeout, EnvSecretFileRoot,
		EnvTLSCertFile, EnvTLSKeyFile, EnvTLSCAFile, EnvTLSServerName} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetDurationEnv(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "unset", value: "", want: 5 * time.Second},
		{name: "valid", value: "250ms", want: 250 * time.Millisecond},
		{name: "malformed", value: "soon", want: 5 * time.Second},
		{name: "negative", value: "-1s", want: 5 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvTimeout, tc.value)
			assert.Equal(t, tc.want, GetDurationEnv(EnvTimeout, 5*time.Second))
		})
	}
}

func TestResolveEnvValuePrefersFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "secret.txt", "  from-file\n")
	t.Setenv(EnvSecretFileRoot, dir)
	t.Setenv(EnvAppSecret, "from-env")
	t.Setenv(EnvAppSecret+"_FILE", "secret.txt")

	value, err := ResolveEnvValue(EnvAppSecret)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestResolveEnvValueFallsBackToVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppSecret, " plain ")

	value, err := ResolveEnvValue(EnvAppSecret)
	require.NoError(t, err)
	assert.Equal(t, "plain", value)
}

func TestReadFileFromAllowedRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", "small content")
	writeFile(t, dir, "large.txt", strings.Repeat("x", maxSecretFileBytes+1))

	t.Run("reads file within root", func(t *testing.T) {
		content, err := readFileFromAllowedRoot("small.txt", dir)
		require.NoError(t, err)
		assert.Equal(t, "small content", string(content))
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		_, err := readFileFromAllowedRoot("large.txt", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("prevents directory traversal", func(t *testing.T) {
		_, err := readFileFromAllowedRoot("../../../etc/passwd", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside allowed root")
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := readFileFromAllowedRoot("missing.txt", dir)
		assert.Error(t, err)
	})
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
base_url: https://guardrails.example.com/
app_id: app-1
app_secret: s3cret
timeout: 2s
`)

	profile, err := LoadProfile(path, false)
	require.NoError(t, err)
	assert.Equal(t, Profile{
		BaseURL:   "https://guardrails.example.com/",
		AppID:     "app-1",
		AppSecret: "s3cret",
		Timeout:   "2s",
	}, profile)
}

func TestLoadProfileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	profile, err := LoadProfile(missing, true)
	require.NoError(t, err)
	assert.Equal(t, Profile{}, profile)

	_, err = LoadProfile(missing, false)
	assert.Error(t, err)
}

func TestLoadProfileRejectsInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "base_url: [unterminated")

	_, err := LoadProfile(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse profile")
}

func TestResolveEnvironmentOverridesProfile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://env.example.com")
	t.Setenv(EnvTimeout, "750ms")

	settings, err := Resolve(Profile{
		BaseURL:   "http://profile.example.com",
		AppID:     "profile-app",
		AppSecret: "profile-secret",
		Timeout:   "2s",
	}, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example.com", settings.BaseURL)
	assert.Equal(t, "profile-app", settings.AppID)
	assert.Equal(t, "profile-secret", settings.Secret)
	assert.Equal(t, 750*time.Millisecond, settings.Timeout)
}

func TestResolveReadsProfileSecretFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "secret", "file-secret\n")
	t.Setenv(EnvSecretFileRoot, dir)

	settings, err := Resolve(Profile{AppSecret: "inline", AppSecretFile: "secret"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", settings.Secret)
	assert.Equal(t, time.Second, settings.Timeout)
}

func TestResolveRejectsBadProfileTimeout(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(Profile{Timeout: "later"}, time.Second)
	assert.Error(t, err)
}

func TestResolveTLSSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTLSCAFile, "/etc/env/ca.pem")

	settings, err := Resolve(Profile{
		TLSCertFile:   " /etc/profile/client.pem ",
		TLSKeyFile:    "/etc/profile/client.key",
		TLSCAFile:     "/etc/profile/ca.pem",
		TLSServerName: "guardrails.internal",
	}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "/etc/profile/client.pem", settings.TLSCertFile)
	assert.Equal(t, "/etc/profile/client.key", settings.TLSKeyFile)
	assert.Equal(t, "/etc/env/ca.pem", settings.TLSCAFile)
	assert.Equal(t, "guardrails.internal", settings.TLSServerName)
}

func TestLoadProfileTLSKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "tls_cert_file: c.pem\ntls_key_file: c.key\ntls_ca_file: ca.pem\ntls_server_name: gw\n")

	profile, err := LoadProfile(path, false)
	require.NoError(t, err)
	assert.Equal(t, "c.pem", profile.TLSCertFile)
	assert.Equal(t, "c.key", profile.TLSKeyFile)
	assert.Equal(t, "ca.pem", profile.TLSCAFile)
	assert.Equal(t, "gw", profile.TLSServerName)
}
