package recorder

import (
	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/logger"
)

type implRecorder struct {
	cfg           config.RecorderConfig
	recordingsDir string
	logger        logger.Logger
}

// New creates a new Recorder instance writing into recordingsDir
func New(cfg config.RecorderConfig, recordingsDir string, log logger.Logger) Recorder {
	return &implRecorder{
		cfg:           cfg,
		recordingsDir: recordingsDir,
		logger:        log,
	}
}
