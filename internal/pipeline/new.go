package pipeline

import (
	"github.com/phamtrung99/notecast/internal/audio"
	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/logger"
	"github.com/phamtrung99/notecast/internal/summarizer"
	"github.com/phamtrung99/notecast/internal/transcriber"
)

type implRunner struct {
	cfg         *config.Config
	audio       audio.Processor
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	logger      logger.Logger
}

// New creates a new Runner instance
func New(cfg *config.Config, ap audio.Processor, tr transcriber.Transcriber, sm summarizer.Summarizer, log logger.Logger) Runner {
	return &implRunner{
		cfg:         cfg,
		audio:       ap,
		transcriber: tr,
		summarizer:  sm,
		logger:      log,
	}
}
