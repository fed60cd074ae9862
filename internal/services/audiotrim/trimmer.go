// Package audiotrim applies accepted trim points to stored recordings by
// shelling out to ffmpeg. The cut is atomic: output goes to a temporary file
// in the same directory and replaces the original on success. The first cut
// of a file keeps an integrity-checked .orig copy of the untouched waveform.
package audiotrim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"eyra/internal/fileutil"
	"eyra/internal/logging"
	"eyra/internal/services"
)

// Request describes a single audio cut.
type Request struct {
	AudioPath string  // Recording file on disk
	Start     float64 // Cut start in seconds
	End       float64 // Cut end in seconds
}

// commandRunner executes an external command; injectable for tests.
type commandRunner func(ctx context.Context, name string, args ...string) error

// Trimmer cuts recordings with ffmpeg.
type Trimmer struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// New constructs a Trimmer using the given ffmpeg binary name or path.
func New(binary string, logger *slog.Logger) *Trimmer {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Trimmer{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "audiotrim"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Trimmer) WithCommandRunner(r commandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// Apply cuts the waveform to [Start, End). The original file is replaced only
// after ffmpeg succeeds.
func (t *Trimmer) Apply(ctx context.Context, req Request) error {
	if t == nil {
		return services.Wrap(services.ErrConfiguration, "audiotrim", "apply", "trimmer not initialized", nil)
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return services.Wrap(services.ErrValidation, "audiotrim", "apply", "audio path is required", nil)
	}
	if req.Start < 0 || req.End <= req.Start {
		return services.Wrap(services.ErrValidation, "audiotrim", "apply",
			fmt.Sprintf("invalid trim range %.3f-%.3f", req.Start, req.End), nil)
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return services.Wrap(services.ErrNotFound, "audiotrim", "apply", "audio file missing", err)
	}

	dir := filepath.Dir(req.AudioPath)
	base := filepath.Base(req.AudioPath)
	tmpPath := filepath.Join(dir, ".trim-"+base+".tmp")
	origPath := req.AudioPath + ".orig"

	if _, err := os.Stat(origPath); os.IsNotExist(err) {
		if err := fileutil.CopyFileVerified(req.AudioPath, origPath); err != nil {
			return services.Wrap(services.ErrExternalTool, "audiotrim", "apply", "back up original audio", err)
		}
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", req.AudioPath,
		"-ss", formatSeconds(req.Start),
		"-to", formatSeconds(req.End),
		"-c", "copy",
		tmpPath,
	}

	t.logger.Debug("executing ffmpeg cut",
		logging.String("audio_path", req.AudioPath),
		logging.String("start", formatSeconds(req.Start)),
		logging.String("end", formatSeconds(req.End)),
	)

	if err := t.run(ctx, t.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "audiotrim", "apply", "ffmpeg failed", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "audiotrim", "apply", "ffmpeg produced no output", err)
	}
	if err := os.Rename(tmpPath, req.AudioPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "audiotrim", "apply", "replace original audio", err)
	}

	t.logger.Info("trim applied",
		logging.String(logging.FieldEventType, "audio_trim_applied"),
		logging.String("audio_path", req.AudioPath),
	)
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed != "" {
			return fmt.Errorf("%w: %s", err, trimmed)
		}
		return err
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
