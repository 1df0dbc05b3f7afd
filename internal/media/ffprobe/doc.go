// Package ffprobe provides a typed wrapper around ffprobe JSON output for
// audio files.
//
// Inspect runs ffprobe restricted to audio streams; the sounds job uses the
// first stream's sample rate and channel count to size the raw PCM it asks
// ffmpeg to decode.
package ffprobe
