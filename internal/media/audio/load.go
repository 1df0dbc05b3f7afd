package audio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pattiprep/internal/media/ffmpeg"
	"pattiprep/internal/media/ffprobe"
	"pattiprep/internal/media/pcm"
)

// ErrNoAudioStream reports a file ffprobe found no audio in.
var ErrNoAudioStream = errors.New("no audio stream")

// Decoder loads audio files, delegating non-WAV formats to ffmpeg.
type Decoder struct {
	FFmpeg  string
	FFprobe string
}

// Load decodes path into PCM.
func (d Decoder) Load(ctx context.Context, path string) (pcm.Audio, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		decoded, err := pcm.ReadWAV(path)
		if err == nil {
			return decoded, nil
		}
		if !errors.Is(err, pcm.ErrUnsupportedWAV) {
			return pcm.Audio{}, err
		}
	}
	return d.decodeExternal(ctx, path)
}

func (d Decoder) decodeExternal(ctx context.Context, path string) (pcm.Audio, error) {
	probe, err := ffprobe.Inspect(ctx, d.FFprobe, path)
	if err != nil {
		return pcm.Audio{}, err
	}
	layout, ok := Select(probe.Streams)
	if !ok {
		return pcm.Audio{}, fmt.Errorf("%w in %s", ErrNoAudioStream, filepath.Base(path))
	}
	raw, err := ffmpeg.DecodeS16LE(ctx, d.FFmpeg, path, layout.StreamIndex, layout.SampleRate, layout.Channels)
	if err != nil {
		return pcm.Audio{}, err
	}
	return pcm.FromS16LE(raw, layout.SampleRate, layout.Channels)
}
