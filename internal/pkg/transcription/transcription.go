// Package transcription runs the external speech-to-text/summarisation program
// and decodes its JSON output.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models"
)

// ErrTranscriptionFailed wraps every failure of the external program.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Result is the decoded output of a successful run.
type Result struct {
	Transcription string          `json:"transcription"`
	Summary       *models.Summary `json:"summary"`
}

// Transcriber turns an audio file into text and a structured summary.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// Config configures a ProcessTranscriber.
type Config struct {
	Command string
	Args    []string
	// Timeout bounds a single run; zero means no limit.
	Timeout time.Duration
}

// ProcessTranscriber invokes "Command Args... audioPath" as an isolated process.
type ProcessTranscriber struct {
	cfg    Config
	logger zerolog.Logger
}

var _ Transcriber = (*ProcessTranscriber)(nil)

// NewProcessTranscriber creates a transcriber backed by an external command.
func NewProcessTranscriber(cfg Config, logger zerolog.Logger) *ProcessTranscriber {
	return &ProcessTranscriber{cfg: cfg, logger: logger}
}

// Transcribe runs the program. A non-zero exit status, an {"error": ...} payload
// or output that is not the expected JSON object are all failures.
func (p *ProcessTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, p.cfg.Args...), audioPath)
	cmd := exec.CommandContext(ctx, p.cfg.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of the script may hold the pipes open after a kill.
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	p.logger.Debug().Str("command", p.cfg.Command).Strs("args", args).Msg("Starting transcription process")

	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The script prints {"error": ...} on stdout before exiting non-zero.
			msg := payloadError(stdout.Bytes())
			if msg == "" {
				msg = strings.TrimSpace(stderr.String())
			}
			return nil, fmt.Errorf("%w: exit status %d: %s", ErrTranscriptionFailed, exitErr.ExitCode(), truncate(msg, 512))
		}
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	result, err := ParseOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	p.logger.Info().Str("audio", audioPath).Dur("elapsed", elapsed).Int("chars", len(result.Transcription)).Msg("Transcription completed")
	return result, nil
}

type rawOutput struct {
	Transcription *string         `json:"transcription"`
	Summary       *models.Summary `json:"summary"`
	Error         string          `json:"error"`
}

// ParseOutput decodes the program's stdout.
func ParseOutput(out []byte) (*Result, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrTranscriptionFailed)
	}

	// Model libraries may log to stdout before the result; the result is the last line.
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	}

	var raw rawOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed output: %v", ErrTranscriptionFailed, err)
	}
	if raw.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptionFailed, raw.Error)
	}
	if raw.Transcription == nil {
		return nil, fmt.Errorf("%w: output has no transcription", ErrTranscriptionFailed)
	}

	summary := raw.Summary
	if summary != nil && summary.KeyPoints == nil {
		summary.KeyPoints = []string{}
	}
	return &Result{Transcription: *raw.Transcription, Summary: summary}, nil
}

func payloadError(out []byte) string {
	out = bytes.TrimSpace(out)
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	}
	var raw rawOutput
	if json.Unmarshal(out, &raw) != nil {
		return ""
	}
	return raw.Error
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
