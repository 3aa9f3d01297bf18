package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the working directory
// when no --config flag is given.
const DefaultFile = "config.yaml"

// Defaults applied by Validate. The tool is expected to work out of the box
// in a fresh directory, so everything has a usable default and the config
// file is optional.
const (
	DefaultChunkSeconds   = 30
	DefaultSampleRate     = 16000
	DefaultWhisperBinary  = "whisper-cli"
	DefaultWhisperModel   = "models/ggml-small.bin"
	DefaultOllamaBaseURL  = "http://localhost:11434"
	DefaultOllamaModel    = "phi3"
	DefaultOllamaTimeout  = 120
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultSummaryPrompt  = "Summarize the following lecture transcript into concise bullet points:"
	DefaultRecorderDevice = "default"
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Audio       AudioConfig       `yaml:"audio"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Recorder    RecorderConfig    `yaml:"recorder"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Performance PerformanceConfig `yaml:"performance"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type PathsConfig struct {
	DataDir string `yaml:"data_dir"`
	Inbox   string `yaml:"inbox"`
	Notes   string `yaml:"notes"`
}

// RunsDir is where per-recording run directories live.
func (p PathsConfig) RunsDir() string {
	return filepath.Join(p.DataDir, "runs")
}

// RecordingsDir is where the capture command writes finished recordings.
func (p PathsConfig) RecordingsDir() string {
	return filepath.Join(p.DataDir, "recordings")
}

type AudioConfig struct {
	ChunkSeconds int  `yaml:"chunk_seconds"`
	SampleRate   int  `yaml:"sample_rate"`
	Normalize    bool `yaml:"normalize"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type SummarizerConfig struct {
	Backend string `yaml:"backend"`
	Prompt  string `yaml:"prompt"`
}

type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

type RecorderConfig struct {
	Driver     string `yaml:"driver"`
	Device     string `yaml:"device"`
	SampleRate int    `yaml:"sample_rate"`
}

type PipelineConfig struct {
	StopOnError   bool `yaml:"stop_on_error"`
	StageAttempts int  `yaml:"stage_attempts"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML config at path. An empty path skips the file and
// returns the built-in defaults, which is the normal case for a fresh
// workspace. Environment variables override file values for the settings
// that commonly differ between machines.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Normalization defaults on; only an explicit `normalize: false`
	// in the file turns it off.
	cfg.Audio.Normalize = true

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NOTECAST_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
}

func (c *Config) Validate() error {
	if c.Audio.ChunkSeconds < 0 {
		return fmt.Errorf("audio.chunk_seconds must not be negative")
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("audio.sample_rate must not be negative")
	}
	switch c.Summarizer.Backend {
	case "", "ollama", "gemini":
	default:
		return fmt.Errorf("summarizer.backend must be 'ollama' or 'gemini', got %q", c.Summarizer.Backend)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	if c.Pipeline.StageAttempts < 0 {
		return fmt.Errorf("pipeline.stage_attempts must not be negative")
	}

	if c.Paths.DataDir == "" {
		c.Paths.DataDir = "data"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = filepath.Join(c.Paths.DataDir, "inbox")
	}
	if c.Paths.Notes == "" {
		c.Paths.Notes = filepath.Join(c.Paths.DataDir, "notes")
	}
	if c.Audio.ChunkSeconds == 0 {
		c.Audio.ChunkSeconds = DefaultChunkSeconds
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = DefaultWhisperBinary
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = DefaultWhisperModel
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.Summarizer.Backend == "" {
		c.Summarizer.Backend = "ollama"
	}
	if c.Summarizer.Prompt == "" {
		c.Summarizer.Prompt = DefaultSummaryPrompt
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = DefaultOllamaBaseURL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = DefaultOllamaModel
	}
	if c.Ollama.TimeoutSeconds == 0 {
		c.Ollama.TimeoutSeconds = DefaultOllamaTimeout
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
	if c.Recorder.Driver == "" {
		c.Recorder.Driver = "auto"
	}
	if c.Recorder.Device == "" {
		c.Recorder.Device = DefaultRecorderDevice
	}
	if c.Recorder.SampleRate == 0 {
		c.Recorder.SampleRate = c.Audio.SampleRate
	}
	if c.Pipeline.StageAttempts == 0 {
		c.Pipeline.StageAttempts = 1
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
