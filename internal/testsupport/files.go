package testsupport

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"pattiprep/internal/media/pcm"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

var gifPalette = color.Palette{
	color.White,
	color.Black,
	color.Transparent,
}

// WriteGIF writes an animated GIF of the given size with one black square per
// frame, stepping diagonally. delay is in hundredths of a second.
func WriteGIF(t testing.TB, path string, size, frames, delay int) {
	t.Helper()

	anim := &gif.GIF{}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, size, size), gifPalette)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				frame.SetColorIndex(x, y, 0)
			}
		}
		offset := (i * 2) % (size / 2)
		for y := offset; y < offset+size/2; y++ {
			for x := offset; x < offset+size/2; x++ {
				frame.SetColorIndex(x, y, 1)
			}
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}
	writeGIF(t, path, anim)
}

// WriteRawGIF encodes anim to path.
func WriteRawGIF(t testing.TB, path string, anim *gif.GIF) {
	t.Helper()
	writeGIF(t, path, anim)
}

func writeGIF(t testing.TB, path string, anim *gif.GIF) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, anim); err != nil {
		t.Fatalf("encode gif %s: %v", path, err)
	}
}

// Span is a stretch of audio: a square wave of Amplitude lasting Ms
// milliseconds. Amplitude 0 is digital silence.
type Span struct {
	Ms        int
	Amplitude int
}

// Bursts renders spans as mono samples at sampleRate.
func Bursts(sampleRate int, spans ...Span) []int {
	var samples []int
	for _, span := range spans {
		n := span.Ms * sampleRate / 1000
		for i := 0; i < n; i++ {
			value := span.Amplitude
			if (i/4)%2 == 1 {
				value = -value
			}
			samples = append(samples, value)
		}
	}
	return samples
}

// WriteWAV writes 16-bit PCM samples to path.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, samples []int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	audio := pcm.Audio{SampleRate: sampleRate, Channels: channels, BitDepth: 16, Samples: samples}
	if err := pcm.WriteWAV(path, audio); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
