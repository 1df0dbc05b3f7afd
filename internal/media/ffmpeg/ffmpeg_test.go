package ffmpeg_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pattiprep/internal/media/ffmpeg"
	"pattiprep/internal/testsupport"
)

func TestConvertPassesSourceAndTarget(t *testing.T) {
	dir := t.TempDir()
	argsLog := filepath.Join(dir, "args.log")
	bin := testsupport.StubBinary(t, dir, "ffmpeg", `echo "$@" > `+argsLog+`
for last; do :; done
printf 'RIFF' > "$last"
`)
	source := filepath.Join(dir, "toot.flac")
	target := filepath.Join(dir, "toot.wav")

	if err := ffmpeg.Convert(context.Background(), bin, source, target); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	logged, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	if !strings.Contains(string(logged), "-y") || !strings.Contains(string(logged), "-i "+source+" "+target) {
		t.Fatalf("unexpected ffmpeg args: %q", logged)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected target written: %v", err)
	}
}

func TestConvertIncludesStderrOnFailure(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.StubBinary(t, dir, "ffmpeg", "echo 'Invalid data found when processing input' >&2\nexit 1\n")
	err := ffmpeg.Convert(context.Background(), bin, "in.ogg", filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestDecodeS16LEReturnsStdout(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.StubBinary(t, dir, "ffmpeg", "printf 'abcd'\n")
	data, err := ffmpeg.DecodeS16LE(context.Background(), bin, "toot.mp3", -1, 44100, 2)
	if err != nil {
		t.Fatalf("DecodeS16LE returned error: %v", err)
	}
	if string(data) != "abcd" {
		t.Fatalf("unexpected pcm payload: %q", data)
	}
	if _, err := ffmpeg.DecodeS16LE(context.Background(), bin, "toot.mp3", -1, 0, 2); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestDecodeS16LEMapsStream(t *testing.T) {
	dir := t.TempDir()
	echo := testsupport.StubBinary(t, dir, "ffmpeg", "printf '%s' \"$*\"\n")

	args, err := ffmpeg.DecodeS16LE(context.Background(), echo, "toot.m4a", 2, 48000, 1)
	if err != nil {
		t.Fatalf("DecodeS16LE returned error: %v", err)
	}
	if !strings.Contains(string(args), "-i toot.m4a -map 0:2 -vn -ac 1 -ar 48000 -f s16le -") {
		t.Fatalf("unexpected ffmpeg arguments: %q", args)
	}

	args, err = ffmpeg.DecodeS16LE(context.Background(), echo, "toot.m4a", -1, 48000, 1)
	if err != nil {
		t.Fatalf("DecodeS16LE returned error: %v", err)
	}
	if strings.Contains(string(args), "-map") {
		t.Fatalf("negative stream should not map: %q", args)
	}
}

func TestAvailableAndVersion(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.StubBinary(t, dir, "ffmpeg", "echo 'ffmpeg version 7.1 Copyright (c) 2000-2024'\necho 'built with clang'\n")
	if err := ffmpeg.Available(context.Background(), bin); err != nil {
		t.Fatalf("Available returned error: %v", err)
	}
	version, err := ffmpeg.Version(context.Background(), bin)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if version != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("unexpected version line: %q", version)
	}

	err = ffmpeg.Available(context.Background(), filepath.Join(dir, "missing-ffmpeg"))
	if !errors.Is(err, ffmpeg.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
