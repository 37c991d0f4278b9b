package transcription

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	res, err := ParseOutput([]byte(`{"transcription":"hello class","summary":{"overview":"o","keyPoints":["a","b"],"detailedExplanation":"d"}}`))
	require.NoError(t, err)
	assert.Equal(t, "hello class", res.Transcription)
	require.NotNil(t, res.Summary)
	assert.Equal(t, []string{"a", "b"}, res.Summary.KeyPoints)

	res, err = ParseOutput([]byte("loading model...\nDevice set to cpu\n{\"transcription\":\"x\",\"summary\":{\"overview\":\"o\"}}\n"))
	require.NoError(t, err)
	assert.Equal(t, "x", res.Transcription)
	assert.Equal(t, []string{}, res.Summary.KeyPoints)
}

func TestParseOutputFailures(t *testing.T) {
	for name, out := range map[string]string{
		"empty":          "",
		"error payload":  `{"error":"Please provide the audio file path"}`,
		"not json":       "Traceback (most recent call last):",
		"missing fields": `{"summary":{"overview":"o"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOutput([]byte(out))
			assert.ErrorIs(t, err, ErrTranscriptionFailed)
		})
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcribe.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestProcessTranscriberSuccess(t *testing.T) {
	script := writeScript(t, `printf '{"transcription":"%s","summary":{"overview":"o","keyPoints":[],"detailedExplanation":"d"}}\n' "$1"`)
	p := NewProcessTranscriber(Config{Command: "sh", Args: []string{script}}, zerolog.Nop())

	res, err := p.Transcribe(context.Background(), "lecture.mp3")
	require.NoError(t, err)
	assert.Equal(t, "lecture.mp3", res.Transcription)
}

func TestProcessTranscriberNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo '{"error": "no such file"}'; exit 1`)
	p := NewProcessTranscriber(Config{Command: "sh", Args: []string{script}}, zerolog.Nop())

	_, err := p.Transcribe(context.Background(), "missing.mp3")
	require.ErrorIs(t, err, ErrTranscriptionFailed)
	assert.Contains(t, err.Error(), "no such file")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestProcessTranscriberTimeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	p := NewProcessTranscriber(Config{Command: "sh", Args: []string{script}, Timeout: 100 * time.Millisecond}, zerolog.Nop())

	start := time.Now()
	_, err := p.Transcribe(context.Background(), "a.wav")
	assert.ErrorIs(t, err, ErrTranscriptionFailed)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestProcessTranscriberMissingCommand(t *testing.T) {
	p := NewProcessTranscriber(Config{Command: "definitely-not-a-real-binary-xyz"}, zerolog.Nop())
	_, err := p.Transcribe(context.Background(), "a.wav")
	assert.ErrorIs(t, err, ErrTranscriptionFailed)
}
