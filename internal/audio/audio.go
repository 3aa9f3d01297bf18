package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/phamtrung99/notecast/internal/domain"
)

const (
	ffmpegBin  = "ffmpeg"
	ffprobeBin = "ffprobe"
)

// probeOutput matches the JSON ffprobe prints with -of json. Numeric fields
// come back as strings.
type probeOutput struct {
	Streams []struct {
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *implAudio) Probe(ctx context.Context, path string) (domain.Recording, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("stat recording: %w", err)
	}

	args := []string{
		"-v", "error",
		"-select_streams", "a:0", // First audio stream only
		"-show_entries", "stream=sample_rate,channels",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}

	out, err := a.executor.Execute(ctx, ffprobeBin, args...)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return domain.Recording{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return domain.Recording{}, fmt.Errorf("no audio stream in %s", path)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
	}
	sampleRate, _ := strconv.Atoi(probe.Streams[0].SampleRate)

	return domain.Recording{
		Path:       path,
		Duration:   time.Duration(seconds * float64(time.Second)),
		SampleRate: sampleRate,
		Channels:   probe.Streams[0].Channels,
		SizeBytes:  info.Size(),
	}, nil
}

// Normalize extracts the audio track as loudness-normalized 16kHz mono WAV,
// the format whisper handles best. A normalization failure is not fatal: the
// chunk cutter re-encodes anyway, so we log and fall back to the source file.
func (a *implAudio) Normalize(ctx context.Context, src, dst string) (string, error) {
	a.logger.Info(ctx, "Normalizing audio: %s", src)

	args := []string{
		"-i", src,
		"-vn", // No video
		"-af", "loudnorm",
		"-ar", strconv.Itoa(a.sampleRate),
		"-ac", "1", // Mono
		"-c:a", "pcm_s16le",
		"-threads", "0", // Use all available threads
		"-y",
		dst,
	}

	if _, err := a.executor.Execute(ctx, ffmpegBin, args...); err != nil {
		a.logger.Warn(ctx, "Normalization failed, continuing with original audio: %v", err)
		return src, nil
	}

	a.logger.Info(ctx, "Audio normalized: %s", dst)
	return dst, nil
}

func (a *implAudio) Cut(ctx context.Context, src, dst string, start, length time.Duration) error {
	// -ss before -i makes ffmpeg seek instead of decoding from zero.
	args := []string{
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(length),
		"-vn",
		"-ar", strconv.Itoa(a.sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		dst,
	}

	if _, err := a.executor.Execute(ctx, ffmpegBin, args...); err != nil {
		return fmt.Errorf("ffmpeg cut chunk at %s: %w", start, err)
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
