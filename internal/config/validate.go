package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateIcon(); err != nil {
		return err
	}
	if err := c.validateSounds(); err != nil {
		return err
	}
	if err := c.validateSegments(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validatePaths rejects layouts where a job's output would clobber or be
// rescanned as its own input. Frame output dirs are reset on every run.
func (c *Config) validatePaths() error {
	outputs := []struct{ key, dir string }{
		{"frames_dir", c.Paths.FramesDir},
		{"template_frames_dir", c.Paths.TemplateFramesDir},
	}
	inputs := []struct{ key, path string }{
		{"gif_dir", c.Paths.GIFDir},
		{"icon_source", c.Paths.IconSource},
	}
	for _, out := range outputs {
		for _, in := range inputs {
			if pathWithin(out.dir, in.path) {
				return fmt.Errorf("paths.%s (%s) must not equal or contain paths.%s (%s)", out.key, out.dir, in.key, in.path)
			}
		}
	}
	for _, src := range []struct{ key, dir string }{
		{"sounds_dir", c.Paths.SoundsDir},
		{"shuffle_dir", c.Paths.ShuffleDir},
	} {
		if samePath(c.Paths.SegmentsDir, src.dir) {
			return fmt.Errorf("paths.segments_dir must differ from paths.%s (%s)", src.key, src.dir)
		}
	}
	return nil
}

func (c *Config) validateFrames() error {
	switch c.Frames.Mode {
	case FrameModeOutline, FrameModeTemplate:
	default:
		return fmt.Errorf("frames.mode must be %q or %q, got %q", FrameModeOutline, FrameModeTemplate, c.Frames.Mode)
	}
	if c.Frames.Size <= 0 {
		return errors.New("frames.size must be positive")
	}
	return nil
}

func (c *Config) validateIcon() error {
	if c.Icon.CanvasSize <= 0 {
		return errors.New("icon.canvas_size must be positive")
	}
	if c.Icon.BodySize <= 0 || c.Icon.BodySize > c.Icon.CanvasSize {
		return fmt.Errorf("icon.body_size must be between 1 and canvas_size (%d)", c.Icon.CanvasSize)
	}
	if c.Icon.SquircleExponent <= 0 {
		return errors.New("icon.squircle_exponent must be positive")
	}
	if c.Icon.Supersample < 1 || c.Icon.Supersample > 8 {
		return errors.New("icon.supersample must be between 1 and 8")
	}
	if c.Icon.ArtScale <= 0 || c.Icon.ArtScale > 1 {
		return errors.New("icon.art_scale must be greater than 0 and at most 1")
	}
	if _, err := colorful.Hex(c.Icon.ColorTop); err != nil {
		return fmt.Errorf("icon.color_top: %w", err)
	}
	if _, err := colorful.Hex(c.Icon.ColorBottom); err != nil {
		return fmt.Errorf("icon.color_bottom: %w", err)
	}
	return nil
}

func (c *Config) validateSounds() error {
	if c.Sounds.WaveformBars <= 0 {
		return errors.New("sounds.waveform_bars must be positive")
	}
	for _, ext := range c.Sounds.ConvertibleExtensions {
		if slices.Contains(c.Sounds.SupportedExtensions, ext) {
			return fmt.Errorf("extension %s cannot be both supported and convertible", ext)
		}
	}
	if !slices.Contains(c.Sounds.SupportedExtensions, ".wav") {
		return errors.New("sounds.supported_extensions must include .wav (conversion target)")
	}
	return nil
}

func (c *Config) validateSegments() error {
	if c.Segments.SilenceThreshDB >= 0 {
		return errors.New("segments.silence_thresh_db must be negative (dBFS)")
	}
	if c.Segments.MinSilenceMs <= 0 {
		return errors.New("segments.min_silence_ms must be positive")
	}
	if c.Segments.PaddingMs < 0 {
		return errors.New("segments.padding_ms must be non-negative")
	}
	if c.Segments.MinSegmentMs < 0 {
		return errors.New("segments.min_segment_ms must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return cleanAbs(a) == cleanAbs(b)
}

// pathWithin reports whether path is dir itself or lies beneath it.
func pathWithin(dir, path string) bool {
	if dir == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(cleanAbs(dir), cleanAbs(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func cleanAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
