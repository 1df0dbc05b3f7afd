package pcm_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pattiprep/internal/media/pcm"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := pcm.Audio{
		SampleRate: 8000,
		Channels:   2,
		BitDepth:   16,
		Samples:    []int{0, 0, 1200, -1200, 32767, -32768, 5, -5},
	}
	if err := pcm.WriteWAV(path, in); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	out, err := pcm.ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if out.SampleRate != 8000 || out.Channels != 2 || out.BitDepth != 16 {
		t.Fatalf("unexpected format: %+v", out)
	}
	if len(out.Samples) != len(in.Samples) {
		t.Fatalf("sample count mismatch: got %d want %d", len(out.Samples), len(in.Samples))
	}
	for i := range in.Samples {
		if out.Samples[i] != in.Samples[i] {
			t.Fatalf("sample %d: got %d want %d", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestReadWAVRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.wav")
	if err := os.WriteFile(path, []byte("ID3 this is an mp3"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := pcm.ReadWAV(path)
	if !errors.Is(err, pcm.ErrUnsupportedWAV) {
		t.Fatalf("expected ErrUnsupportedWAV, got %v", err)
	}
}

func TestFromS16LE(t *testing.T) {
	data := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0xff}
	a, err := pcm.FromS16LE(data, 1000, 1)
	if err != nil {
		t.Fatalf("FromS16LE: %v", err)
	}
	want := []int{1, -1, -32768}
	if len(a.Samples) != len(want) {
		t.Fatalf("unexpected samples: %v", a.Samples)
	}
	for i := range want {
		if a.Samples[i] != want[i] {
			t.Fatalf("sample %d: got %d want %d", i, a.Samples[i], want[i])
		}
	}
	if _, err := pcm.FromS16LE(data, 0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestDurationSliceAndWindow(t *testing.T) {
	a := pcm.Audio{SampleRate: 1000, Channels: 2, BitDepth: 16, Samples: make([]int, 2*1500)}
	for i := range a.Samples {
		a.Samples[i] = i
	}
	if a.DurationMs() != 1500 {
		t.Fatalf("unexpected duration: %d", a.DurationMs())
	}
	if a.MaxAmplitude() != 32768 {
		t.Fatalf("unexpected max amplitude: %v", a.MaxAmplitude())
	}
	slice := a.Slice(100, 200)
	if slice.FrameCount() != 100 || slice.Samples[0] != 200 {
		t.Fatalf("unexpected slice: frames=%d first=%d", slice.FrameCount(), slice.Samples[0])
	}
	if clamped := a.Slice(1400, 9999); clamped.FrameCount() != 100 {
		t.Fatalf("expected clamped slice of 100 frames, got %d", clamped.FrameCount())
	}
	if window := a.Window(1490, 20); len(window) != 20 {
		t.Fatalf("expected clamped window of 10 frames, got %d samples", len(window))
	}
}
