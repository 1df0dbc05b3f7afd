package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "mjpeg", "codec_type": "video"},
    {"index": 1, "codec_name": "mp3", "codec_type": "audio", "sample_fmt": "fltp",
     "sample_rate": "44100", "channels": 2, "channel_layout": "stereo", "duration": "1.567"}
  ],
  "format": {"filename": "toot.mp3", "duration": "1.567347", "size": "26112", "format_name": "mp3"}
}`

func TestParse(t *testing.T) {
	result, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(result.Streams) != 2 || result.Format.FormatName != "mp3" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Streams[0].IsAudio() || !result.Streams[1].IsAudio() {
		t.Fatalf("unexpected stream types: %+v", result.Streams)
	}
	if got := result.Streams[1].SampleRateHz(); got != 44100 {
		t.Fatalf("expected 44100 Hz, got %d", got)
	}
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSampleRateHzRejectsInvalidValues(t *testing.T) {
	for _, value := range []string{"", "n/a", "-8000", "0"} {
		if got := (Stream{SampleRate: value}).SampleRateHz(); got != 0 {
			t.Fatalf("SampleRateHz(%q) = %d, want 0", value, got)
		}
	}
	if got := (Stream{SampleRate: " 48000 "}).SampleRateHz(); got != 48000 {
		t.Fatalf("expected trimmed rate, got %d", got)
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	payload := filepath.Join(dir, "probe.json")
	if err := os.WriteFile(payload, []byte(sampleOutput), 0o644); err != nil {
		t.Fatal(err)
	}
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat " + payload + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Inspect(context.Background(), stub, "toot.mp3")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(result.Streams) != 2 {
		t.Fatalf("unexpected streams: %+v", result.Streams)
	}

	failing := filepath.Join(dir, "ffprobe-fail")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\necho 'Invalid data found' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(context.Background(), failing, "toot.mp3"); err == nil {
		t.Fatal("expected failure from ffprobe exit status")
	}
	if _, err := Inspect(context.Background(), stub, "  "); err == nil {
		t.Fatal("expected empty path error")
	}
}
