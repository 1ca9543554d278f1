package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	EnvConfigPath = "CHATTER_CONFIG"
	EnvBaseURL    = "CHATTER_BASE_URL"
)

type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Settings configures the chat client.
type Settings struct {
	BaseURL string        `yaml:"base-url"`
	Timeout time.Duration `yaml:"timeout"`
	// Welcome is shown as the first bot message of a session.
	Welcome string      `yaml:"welcome"`
	Plain   bool        `yaml:"plain"`
	Log     LogSettings `yaml:"log"`
}

func Default() *Settings {
	return &Settings{
		BaseURL: DefaultBaseURL,
		Welcome: "👋 Hello! Ask me anything to get started.",
		Log: LogSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns $HOME/.chatter/config.yaml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".chatter", "config.yaml")
}

// Load reads settings from path. An empty path falls back to $CHATTER_CONFIG
// and then DefaultPath. A missing file at a fallback location yields the
// defaults; a missing file that was asked for explicitly is an error.
func Load(path string) (*Settings, error) {
	s := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, s); err != nil {
				return nil, errors.Wrapf(err, "failed to parse config %s", path)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		s.BaseURL = v
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return errors.New("base-url cannot be empty")
	}
	if s.Timeout < 0 {
		return errors.Errorf("timeout cannot be negative: %s", s.Timeout)
	}
	switch s.Log.Format {
	case "", "console", "json":
	default:
		return errors.Errorf("unknown log format: %s", s.Log.Format)
	}
	return nil
}
