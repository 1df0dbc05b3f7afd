package audio

import (
	"sort"
	"strings"

	"pattiprep/internal/media/ffprobe"
)

const (
	fallbackSampleRate = 44100
	fallbackChannels   = 2
)

// Layout is the PCM shape to request from the decoder.
type Layout struct {
	StreamIndex int
	SampleRate  int
	Channels    int
	Codec       string
}

// Select returns the audio stream to decode. Streams are ranked by channel
// count, then sample rate, then stream order. Missing rate or channel data
// falls back to 44.1 kHz stereo.
func Select(streams []ffprobe.Stream) (Layout, bool) {
	candidates := make([]ffprobe.Stream, 0, len(streams))
	for _, stream := range streams {
		if stream.IsAudio() {
			candidates = append(candidates, stream)
		}
	}
	if len(candidates) == 0 {
		return Layout{StreamIndex: -1}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Channels != b.Channels {
			return a.Channels > b.Channels
		}
		if a.SampleRateHz() != b.SampleRateHz() {
			return a.SampleRateHz() > b.SampleRateHz()
		}
		return a.Index < b.Index
	})

	best := candidates[0]
	layout := Layout{
		StreamIndex: best.Index,
		SampleRate:  best.SampleRateHz(),
		Channels:    best.Channels,
		Codec:       strings.ToLower(strings.TrimSpace(best.CodecName)),
	}
	if layout.SampleRate <= 0 {
		layout.SampleRate = fallbackSampleRate
	}
	if layout.Channels <= 0 {
		layout.Channels = fallbackChannels
	}
	return layout, true
}
