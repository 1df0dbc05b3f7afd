package pcm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// ErrUnsupportedWAV reports a RIFF file go-audio cannot decode as integer PCM,
// for example IEEE float WAVs. Callers fall back to ffmpeg.
var ErrUnsupportedWAV = errors.New("pcm: unsupported wav encoding")

// ReadWAV decodes an integer PCM WAV file.
func ReadWAV(path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Audio{}, fmt.Errorf("%w: %s is not a valid wav file", ErrUnsupportedWAV, filepath.Base(path))
	}
	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return Audio{}, fmt.Errorf("%w: format tag %d", ErrUnsupportedWAV, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("decode wav %s: %w", filepath.Base(path), err)
	}

	bitDepth := int(decoder.BitDepth)
	samples := buf.Data
	if bitDepth == 8 {
		// 8-bit WAV is unsigned; shift to signed so silence sits at zero.
		for i, s := range samples {
			samples[i] = s - 128
		}
	}
	out := Audio{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   bitDepth,
		Samples:    samples,
	}
	if out.Channels <= 0 || out.SampleRate <= 0 {
		return Audio{}, fmt.Errorf("%w: missing format chunk", ErrUnsupportedWAV)
	}
	out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%out.Channels]
	return out, nil
}

// WriteWAV encodes a as a PCM WAV file at path, replacing any existing file.
func WriteWAV(path string, a Audio) (err error) {
	if a.Channels <= 0 || a.SampleRate <= 0 {
		return errors.New("pcm: write wav: sample rate and channels must be positive")
	}
	bitDepth := a.BitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	samples := a.Samples
	if bitDepth == 8 {
		samples = make([]int, len(a.Samples))
		for i, s := range a.Samples {
			samples[i] = s + 128
		}
	}

	encoder := wav.NewEncoder(f, a.SampleRate, bitDepth, a.Channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: a.Channels, SampleRate: a.SampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("encode wav %s: %w", filepath.Base(path), err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav %s: %w", filepath.Base(path), err)
	}
	return nil
}
