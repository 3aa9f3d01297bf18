package transcriber

import (
	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/logger"
	"github.com/phamtrung99/notecast/pkg/executor"
)

type implTranscriber struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Transcriber instance backed by a whisper.cpp binary
func New(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Transcriber {
	return &implTranscriber{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
