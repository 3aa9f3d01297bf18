package transcriber

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phamtrung99/notecast/internal/domain"
)

// Transcribe converts one audio chunk to plain text with whisper.
// Whisper arguments:
// -m: Model path
// -f: Input audio file
// -otxt: Output plain text
// -l: Force language (prevents hallucination)
// -t: Number of threads
// --prompt: Domain keywords to improve accuracy
// --output-file: Output file prefix (whisper appends .txt)
// -np: No progress prints on stdout
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath, outputPrefix string) (string, error) {
	if _, err := t.executor.LookPath(t.cfg.BinaryPath); err != nil {
		return "", fmt.Errorf("whisper binary %q: %w", t.cfg.BinaryPath, domain.ErrServiceUnavailable)
	}

	t.logger.Info(ctx, "Transcribing with %d threads: %s", t.cfg.Threads, audioPath)

	args := []string{
		"-m", t.cfg.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-l", t.cfg.Language,
		"-t", strconv.Itoa(t.cfg.Threads),
	}
	if t.cfg.Prompt != "" {
		args = append(args, "--prompt", t.cfg.Prompt)
	}
	args = append(args, "--output-file", outputPrefix, "-np")

	if _, err := t.executor.Execute(ctx, t.cfg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read transcript %s: %w", txtPath, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		// Silence or hallucination filtering can leave an empty file.
		return "", fmt.Errorf("transcript for %s: %w", audioPath, domain.ErrEmptyOutput)
	}

	t.logger.Info(ctx, "Transcription completed: %s", txtPath)
	return text, nil
}

// Ping checks the binary and model without spending a transcription.
func (t *implTranscriber) Ping(_ context.Context) error {
	if _, err := t.executor.LookPath(t.cfg.BinaryPath); err != nil {
		return fmt.Errorf("whisper binary %q not found: %w", t.cfg.BinaryPath, domain.ErrServiceUnavailable)
	}
	if _, err := os.Stat(t.cfg.ModelPath); err != nil {
		return fmt.Errorf("whisper model %s: %w", t.cfg.ModelPath, domain.ErrServiceUnavailable)
	}
	return nil
}
