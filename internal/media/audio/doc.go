// Package audio loads sound files as interleaved PCM.
//
// Integer PCM WAV files are decoded in-process through go-audio. Everything
// else (mp3, m4a, aiff, float WAVs) is probed with ffprobe to pick a stream and
// its native layout, then decoded to signed 16-bit PCM by ffmpeg.
//
// Key types:
//   - Decoder: carries the ffmpeg/ffprobe binaries to use
//
// Primary entry points:
//   - Decoder.Load: returns pcm.Audio for a path
//   - Select: chooses the audio stream to decode from an ffprobe result
package audio
