package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-go-golems/chatter/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONToFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "chatter.log")
	closer, err := Init(config.LogSettings{Level: "debug", Format: "json", File: p}, true)
	require.NoError(t, err)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Str("component", "test").Msg("hello")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Contains(t, string(b), `"message":"hello"`)
	require.Contains(t, string(b), `"component":"test"`)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInit_InvalidLevel(t *testing.T) {
	_, err := Init(config.LogSettings{Level: "loud"}, false)
	require.Error(t, err)
}

func TestInit_QuietDiscards(t *testing.T) {
	closer, err := Init(config.LogSettings{Level: "info"}, true)
	require.NoError(t, err)
	require.NoError(t, closer.Close())
}
