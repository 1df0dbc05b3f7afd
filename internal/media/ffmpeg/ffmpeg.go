// Package ffmpeg runs the ffmpeg binary for the two jobs the sounds pipeline
// delegates to it: converting unsupported formats to WAV and decoding
// compressed audio to raw PCM.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnavailable reports that the configured ffmpeg binary cannot be found.
var ErrUnavailable = errors.New("ffmpeg not available")

func binaryOrDefault(binary string) string {
	if binary = strings.TrimSpace(binary); binary != "" {
		return binary
	}
	return "ffmpeg"
}

// Available reports whether binary resolves and answers -version.
func Available(ctx context.Context, binary string) error {
	binary = binaryOrDefault(binary)
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, binary, err)
	}
	cmd := exec.CommandContext(ctx, binary, "-version") //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s -version: %w: %s", ErrUnavailable, binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Version returns the first line of ffmpeg -version output.
func Version(ctx context.Context, binary string) (string, error) {
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), "-version") //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg version: %w", err)
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line), nil
}

// Convert transcodes source into target, overwriting target. ffmpeg picks the
// codec from the target extension.
func Convert(ctx context.Context, binary, source, target string) error {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", source, target}
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg convert: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// DecodeS16LE decodes one audio stream of path to interleaved signed 16-bit
// little-endian PCM at the requested rate and channel count. A negative stream
// lets ffmpeg pick.
func DecodeS16LE(ctx context.Context, binary, path string, stream, sampleRate, channels int) ([]byte, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("ffmpeg pcm decode: invalid format %d Hz x %d", sampleRate, channels)
	}
	args := []string{"-hide_banner", "-loglevel", "error", "-i", path}
	if stream >= 0 {
		args = append(args, "-map", "0:"+strconv.Itoa(stream))
	}
	args = append(args,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	)
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg pcm decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
