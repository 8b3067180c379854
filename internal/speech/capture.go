package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const defaultSynthTimeout = 30 * time.Second

// Synthesizer turns script text into raw PCM16 samples at the project
// sample rate using a selected voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice, opts Options) ([]byte, error)
}

// CommandSynthesizer runs a piper style synthesis binary as a fresh
// process per request: script on stdin, raw PCM on stdout. A fresh
// process avoids model state leaking between requests.
type CommandSynthesizer struct {
	binary  string
	timeout time.Duration
}

// NewCommandSynthesizer creates a synthesizer around the given binary.
// A timeout of zero uses the default.
func NewCommandSynthesizer(binary string, timeout time.Duration) *CommandSynthesizer {
	if timeout <= 0 {
		timeout = defaultSynthTimeout
	}
	return &CommandSynthesizer{binary: binary, timeout: timeout}
}

// CheckBinary verifies the synthesis binary is on PATH.
func (s *CommandSynthesizer) CheckBinary() error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("synthesis binary %q not found in PATH: %w", s.binary, err)
	}
	return nil
}

// Synthesize runs one capture session. The voice ID is the model path
// passed to the binary; rate maps to the model's length scale.
func (s *CommandSynthesizer) Synthesize(ctx context.Context, text string, voice Voice, opts Options) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{
		"--model", voice.ID,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1/opts.Rate),
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, s.binary, args...)

	// Stdin must be attached before Start or short scripts can race the
	// process reading it.
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start synthesis process: %w", err)
	}
	err := cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("synthesis timed out after %v", s.timeout)
	}
	if err != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("synthesis process failed: %w: %s", err, strings.TrimSpace(msg))
		}
		return nil, fmt.Errorf("synthesis process failed: %w", err)
	}

	log.Debug("capture session complete",
		"voice", voice.Name,
		"text_length", len(text),
		"audio_bytes", stdout.Len(),
		"elapsed", time.Since(start))

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("synthesis produced no audio")
	}
	return stdout.Bytes(), nil
}
