package cmds

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHATTER_CONFIG", "")
	t.Setenv("CHATTER_BASE_URL", "")
}

func TestHealthCommand(t *testing.T) {
	isolateConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","companies_loaded":4}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"health", "--base-url", srv.URL})
	require.NoError(t, root.Execute())
	require.Equal(t, srv.URL+": healthy (4 companies loaded)\n", out.String())
}

func TestHealthCommand_JSON(t *testing.T) {
	isolateConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","companies_loaded":1}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"health", "--json", "--base-url", srv.URL})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), `"status": "healthy"`)
}

func TestHealthCommand_Unhealthy(t *testing.T) {
	isolateConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"health", "--base-url", srv.URL})
	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestHealthCommand_UsesConfigFile(t *testing.T) {
	isolateConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","companies_loaded":2}`))
	}))
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("base-url: "+srv.URL+"\ntimeout: 5s\n"), 0o600))

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"health", "--config", p})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "healthy (2 companies loaded)")
}

func TestHealthCommand_FlagOverridesConfigFile(t *testing.T) {
	isolateConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","companies_loaded":0}`))
	}))
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("base-url: http://127.0.0.1:1\n"), 0o600))

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"health", "--config", p, "--base-url", srv.URL, "--timeout", "2s"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), srv.URL)
}

func TestHealthCommand_InvalidLogFormat(t *testing.T) {
	isolateConfig(t)
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"health", "--log-format", "xml"})
	require.Error(t, root.Execute())
}
