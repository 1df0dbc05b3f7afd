// Package pcm holds decoded audio as interleaved integer samples and reads and
// writes it as PCM WAV through go-audio.
package pcm

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/go-audio/audio"
)

// Audio is decoded, interleaved PCM. Samples are signed and scaled to BitDepth.
type Audio struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int
}

// FromS16LE builds Audio from raw signed 16-bit little-endian interleaved bytes.
func FromS16LE(data []byte, sampleRate, channels int) (Audio, error) {
	if sampleRate <= 0 || channels <= 0 {
		return Audio{}, errors.New("pcm: sample rate and channels must be positive")
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	frameSamples := len(samples) - len(samples)%channels
	return Audio{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   16,
		Samples:    samples[:frameSamples],
	}, nil
}

// FrameCount returns the number of sample frames (one sample per channel).
func (a Audio) FrameCount() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// DurationMs returns the duration rounded to the nearest millisecond.
func (a Audio) DurationMs() int {
	if a.SampleRate <= 0 {
		return 0
	}
	return int(math.Round(float64(a.FrameCount()) * 1000 / float64(a.SampleRate)))
}

// MaxAmplitude is the largest magnitude a sample of this bit depth can hold.
func (a Audio) MaxAmplitude() float64 {
	if a.BitDepth <= 0 {
		return float64(audio.IntMaxSignedValue(16)) + 1
	}
	return float64(audio.IntMaxSignedValue(a.BitDepth)) + 1
}

// FrameAt converts a millisecond offset to a frame index, clamped to the audio.
func (a Audio) FrameAt(ms int) int {
	frame := int(float64(ms) * float64(a.SampleRate) / 1000)
	if frame < 0 {
		return 0
	}
	if total := a.FrameCount(); frame > total {
		return total
	}
	return frame
}

// Slice returns the audio between startMs (inclusive) and endMs (exclusive).
// The returned Audio shares its sample storage with a.
func (a Audio) Slice(startMs, endMs int) Audio {
	start := a.FrameAt(startMs)
	end := a.FrameAt(endMs)
	if end < start {
		end = start
	}
	out := a
	out.Samples = a.Samples[start*a.Channels : end*a.Channels]
	return out
}

// Window returns frames [startFrame, startFrame+frames) clamped to the audio.
func (a Audio) Window(startFrame, frames int) []int {
	total := a.FrameCount()
	if startFrame < 0 {
		startFrame = 0
	}
	end := startFrame + frames
	if end > total {
		end = total
	}
	if startFrame >= end {
		return nil
	}
	return a.Samples[startFrame*a.Channels : end*a.Channels]
}

// FramesPerMs returns how many frames one millisecond spans.
func (a Audio) FramesPerMs() float64 {
	return float64(a.SampleRate) / 1000
}
