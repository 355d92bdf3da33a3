package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Chat     ChatConfig     `yaml:"chat"`
	Speech   SpeechConfig   `yaml:"speech"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Playback PlaybackConfig `yaml:"playback"`
	UI       UIConfig       `yaml:"ui"`
	Log      LogConfig      `yaml:"log"`
}

type ChatConfig struct {
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
	// Timeout of 0 leaves the request unbounded.
	Timeout time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	Language         string        `yaml:"language"`
	Source           string        `yaml:"source"`
	FileDir          string        `yaml:"file_dir"`
	SampleRate       int           `yaml:"sample_rate"`
	SilenceThreshold int           `yaml:"silence_threshold"`
	SilenceDuration  time.Duration `yaml:"silence_duration"`
	MaxDuration      time.Duration `yaml:"max_duration"`
	Transcriber      string        `yaml:"transcriber"`
	Command          string        `yaml:"command"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type PlaybackConfig struct {
	Mode         string `yaml:"mode"`
	Command      string `yaml:"command"`
	ReportErrors bool   `yaml:"report_errors"`
}

type UIConfig struct {
	Terminal   *bool  `yaml:"terminal"`
	HTTPAddr   string `yaml:"http_addr"`
	AuthToken  string `yaml:"auth_token"`
	TrustProxy bool   `yaml:"trust_proxy"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, expanding ${VAR} references. An empty
// path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Chat.BaseURL == "" {
		c.Chat.BaseURL = "http://localhost:8000"
	}
	if c.Chat.Path == "" {
		c.Chat.Path = "/api/chat"
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.Source == "" {
		c.Speech.Source = "microphone"
	}
	if c.Speech.FileDir == "" {
		c.Speech.FileDir = "./audio"
	}
	if c.Speech.SampleRate == 0 {
		c.Speech.SampleRate = 16000
	}
	if c.Speech.SilenceThreshold == 0 {
		c.Speech.SilenceThreshold = 500
	}
	if c.Speech.SilenceDuration == 0 {
		c.Speech.SilenceDuration = time.Second
	}
	if c.Speech.MaxDuration == 0 {
		c.Speech.MaxDuration = 10 * time.Second
	}
	if c.Speech.Transcriber == "" {
		c.Speech.Transcriber = "openai"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.Playback.Mode == "" {
		c.Playback.Mode = "exec"
	}
	if c.Playback.Mode == "exec" && c.Playback.Command == "" {
		c.Playback.Command = "ffplay -nodisp -autoexit -loglevel quiet"
	}
	if c.UI.Terminal == nil {
		enabled := true
		c.UI.Terminal = &enabled
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	switch c.Speech.Source {
	case "microphone", "file":
	default:
		return fmt.Errorf("speech.source: unknown source %q", c.Speech.Source)
	}

	switch c.Speech.Transcriber {
	case "openai":
	case "exec":
		if c.Speech.Command == "" {
			return fmt.Errorf("speech.command is required for the exec transcriber")
		}
	default:
		return fmt.Errorf("speech.transcriber: unknown transcriber %q", c.Speech.Transcriber)
	}

	switch c.Playback.Mode {
	case "speaker", "exec", "none":
	default:
		return fmt.Errorf("playback.mode: unknown mode %q", c.Playback.Mode)
	}

	if c.Chat.Timeout < 0 {
		return fmt.Errorf("chat.timeout must not be negative")
	}
	if c.Speech.SilenceThreshold < 0 || c.Speech.SilenceThreshold > 32767 {
		return fmt.Errorf("speech.silence_threshold out of range: %d", c.Speech.SilenceThreshold)
	}
	return nil
}

// TerminalEnabled reports whether the interactive terminal UI should run.
func (c *Config) TerminalEnabled() bool {
	return c.UI.Terminal == nil || *c.UI.Terminal
}
