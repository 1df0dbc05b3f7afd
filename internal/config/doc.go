// Package config loads, normalizes, and validates pattiprep configuration.
//
// It supplies repository defaults, resolves relative asset paths against the
// project root (the directory holding the config file, or the working
// directory), expands tilde shortcuts, and honours PATTIPREP_FFMPEG and
// PATTIPREP_FFPROBE as fallbacks for the audio tools.
//
// Always obtain settings through this package so the jobs receive absolute
// paths and clear validation errors.
package config
