package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	p := writeConfig(t, `
base-url: http://chat.internal:9000
timeout: 30s
welcome: hi there
plain: true
log:
  level: debug
  format: json
  file: /tmp/chatter.log
`)

	s, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "http://chat.internal:9000", s.BaseURL)
	require.Equal(t, 30*time.Second, s.Timeout)
	require.Equal(t, "hi there", s.Welcome)
	require.True(t, s.Plain)
	require.Equal(t, "debug", s.Log.Level)
	require.Equal(t, "json", s.Log.Format)
	require.Equal(t, "/tmp/chatter.log", s.Log.File)
}

func TestLoad_MissingExplicitFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MissingDefaultFileYieldsDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv("HOME", t.TempDir())

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, s.BaseURL)
	require.Equal(t, "info", s.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "base-url: http://from-file\n")
	t.Setenv(EnvConfigPath, p)
	t.Setenv(EnvBaseURL, "http://from-env")

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://from-env", s.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeConfig(t, "base-url: [unterminated\n")
	_, err := Load(p)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	s.Log.Format = "xml"
	require.Error(t, s.Validate())

	s = Default()
	s.Timeout = -time.Second
	require.Error(t, s.Validate())

	s = Default()
	s.BaseURL = " "
	require.Error(t, s.Validate())
}
