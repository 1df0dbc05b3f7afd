// Package soundcheck keeps sounds-manifest.json in step with the audio files
// on disk.
//
// A run scans the sounds directory, converts formats the app cannot play to
// WAV through ffmpeg, splits shuffle recordings into silence-bounded
// segments, reconciles the existing manifest (keeping user edits), recomputes
// waveform summaries, and writes the manifest back atomically. Dry runs do all
// the analysis and report what would change without touching disk.
package soundcheck
