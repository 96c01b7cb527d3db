// Package config loads application settings from a YAML file, an optional
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
	"github.com/abhisek/mbeprep/internal/timer"
)

// Environment variables that override file settings.
const (
	EnvDBPath    = "MBEPREP_DB"
	EnvSampleURL = "MBEPREP_SAMPLE_URL"
	EnvExportDir = "MBEPREP_EXPORT_DIR"
	EnvConfig    = "MBEPREP_CONFIG"
)

// Config holds all application configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means the XDG data location.
	DBPath string `yaml:"db_path"`

	// SampleURL is where `mbeprep sample` downloads the demo bank.
	SampleURL string `yaml:"sample_url"`

	// ExportDir receives backups written by `mbeprep export`.
	ExportDir string `yaml:"export_dir"`

	// Quiz seeds run settings until the user saves their own.
	Quiz QuizDefaults `yaml:"quiz"`
}

// QuizDefaults are the run settings used before any are saved.
type QuizDefaults struct {
	QuestionLimit int          `yaml:"question_limit"`
	HideAnswer    bool         `yaml:"hide_answer"`
	Scramble      bool         `yaml:"scramble"`
	Timers        timer.Config `yaml:"timers"`
}

// Settings converts the defaults into run settings with no filters.
func (d QuizDefaults) Settings() session.Settings {
	s := session.DefaultSettings()
	s.QuestionLimit = d.QuestionLimit
	s.HideAnswer = d.HideAnswer
	s.Scramble = d.Scramble
	s.Timers = d.Timers.Normalized()
	return s
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleURL: bankfile.SampleURL,
		ExportDir: ".",
		Quiz: QuizDefaults{
			Timers: timer.DefaultConfig(),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mbeprep/config.yaml, falling back
// to ~/.config/mbeprep/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mbeprep", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mbeprep", "config.yaml"), nil
}

// Load builds a Config from defaults, the YAML file at path, a .env file in
// the working directory and the environment, in increasing priority. A
// missing YAML or .env file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if p := os.Getenv(EnvDBPath); p != "" {
		cfg.DBPath = p
	}
	if u := os.Getenv(EnvSampleURL); u != "" {
		cfg.SampleURL = u
	}
	if d := os.Getenv(EnvExportDir); d != "" {
		cfg.ExportDir = d
	}
}

// ResolveDBPath returns DBPath, or the default data location when unset.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, store.EnsureDir(c.DBPath)
	}
	return store.DefaultDBPath()
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	if c.Quiz.QuestionLimit < 0 {
		return fmt.Errorf("quiz.question_limit must not be negative, got %d", c.Quiz.QuestionLimit)
	}
	if c.Quiz.Timers.SessionMinutes < 0 {
		return fmt.Errorf("quiz.timers.session_minutes must not be negative, got %d", c.Quiz.Timers.SessionMinutes)
	}
	if c.Quiz.Timers.QuestionSeconds < 0 {
		return fmt.Errorf("quiz.timers.question_seconds must not be negative, got %d", c.Quiz.Timers.QuestionSeconds)
	}
	if c.SampleURL == "" {
		return fmt.Errorf("sample_url must not be empty")
	}
	return nil
}
