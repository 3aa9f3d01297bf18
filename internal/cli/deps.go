package cli

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/phamtrung99/notecast/internal/audio"
	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/logger"
	"github.com/phamtrung99/notecast/internal/pipeline"
	"github.com/phamtrung99/notecast/internal/recorder"
	"github.com/phamtrung99/notecast/internal/summarizer"
	"github.com/phamtrung99/notecast/internal/transcriber"
	"github.com/phamtrung99/notecast/pkg/executor"
)

func (d *Dependencies) init(configPath string, verbose bool) error {
	// API keys and machine-local overrides live in .env; a missing file
	// is the normal case.
	_ = godotenv.Load()

	if configPath == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			configPath = config.DefaultFile
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	log := logger.New(cfg.Logging.Level)
	exec := executor.New()

	tr := transcriber.New(cfg.Whisper, exec, log)
	sum, err := summarizer.New(cfg, geminiKeys(), log)
	if err != nil {
		return err
	}
	ap := audio.New(exec, log, cfg.Audio.SampleRate)

	d.Config = cfg
	d.Logger = log
	d.Transcriber = tr
	d.Summarizer = sum
	d.Runner = pipeline.New(cfg, ap, tr, sum, log)
	d.Recorder = recorder.New(cfg.Recorder, cfg.Paths.RecordingsDir(), log)
	return nil
}

// geminiKeys reads the comma-separated key list from the environment.
// GEMINI_API_KEY is accepted as a single-key fallback.
func geminiKeys() []string {
	raw := os.Getenv("GEMINI_API_KEYS")
	if raw == "" {
		raw = os.Getenv("GEMINI_API_KEY")
	}

	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
