package audio

import (
	"github.com/phamtrung99/notecast/internal/logger"
	"github.com/phamtrung99/notecast/pkg/executor"
)

type implAudio struct {
	executor   executor.Executor
	logger     logger.Logger
	sampleRate int
}

// New creates a new Processor instance
func New(exec executor.Executor, log logger.Logger, sampleRate int) Processor {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &implAudio{
		executor:   exec,
		logger:     log,
		sampleRate: sampleRate,
	}
}
