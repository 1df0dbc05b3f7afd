package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// normalize expands paths and fills derived defaults. baseDir is the directory
// of the loaded config file, or empty when running on defaults.
func (c *Config) normalize(baseDir string) error {
	if err := c.normalizePaths(baseDir); err != nil {
		return err
	}
	c.normalizeFrames()
	c.normalizeIcon()
	c.normalizeSounds()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths(baseDir string) error {
	root := strings.TrimSpace(c.Paths.Root)
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		baseDir = cwd
	}
	var err error
	if root == "" {
		root = baseDir
	}
	if c.Paths.Root, err = resolveUnder(baseDir, root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	root = c.Paths.Root

	if strings.TrimSpace(c.Paths.GIFDir) == "" {
		c.Paths.GIFDir = defaultGIFDir
	}
	if c.Paths.GIFDir, err = resolveUnder(root, c.Paths.GIFDir); err != nil {
		return fmt.Errorf("paths.gif_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FramesDir) == "" {
		c.Paths.FramesDir = defaultFramesDir
	}
	if c.Paths.FramesDir, err = resolveUnder(root, c.Paths.FramesDir); err != nil {
		return fmt.Errorf("paths.frames_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TemplateFramesDir) == "" {
		c.Paths.TemplateFramesDir = defaultTemplateFramesDir
	}
	if c.Paths.TemplateFramesDir, err = resolveUnder(root, c.Paths.TemplateFramesDir); err != nil {
		return fmt.Errorf("paths.template_frames_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.IconSource) == "" {
		c.Paths.IconSource = filepath.Join(c.Paths.GIFDir, defaultIconSourceName)
	}
	if c.Paths.IconSource, err = resolveUnder(root, c.Paths.IconSource); err != nil {
		return fmt.Errorf("paths.icon_source: %w", err)
	}
	if strings.TrimSpace(c.Paths.IconDir) == "" {
		c.Paths.IconDir = defaultIconDir
	}
	if c.Paths.IconDir, err = resolveUnder(root, c.Paths.IconDir); err != nil {
		return fmt.Errorf("paths.icon_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SoundsDir) == "" {
		c.Paths.SoundsDir = defaultSoundsDir
	}
	if c.Paths.SoundsDir, err = resolveUnder(root, c.Paths.SoundsDir); err != nil {
		return fmt.Errorf("paths.sounds_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ShuffleDir) == "" {
		c.Paths.ShuffleDir = filepath.Join(c.Paths.SoundsDir, defaultShuffleSubdir)
	}
	if c.Paths.ShuffleDir, err = resolveUnder(root, c.Paths.ShuffleDir); err != nil {
		return fmt.Errorf("paths.shuffle_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SegmentsDir) == "" {
		c.Paths.SegmentsDir = filepath.Join(c.Paths.SoundsDir, defaultSegmentsSubdir)
	}
	if c.Paths.SegmentsDir, err = resolveUnder(root, c.Paths.SegmentsDir); err != nil {
		return fmt.Errorf("paths.segments_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = resolveUnder(root, c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFrames() {
	c.Frames.Mode = strings.ToLower(strings.TrimSpace(c.Frames.Mode))
	if c.Frames.Mode == "" {
		c.Frames.Mode = FrameModeOutline
	}
	if c.Frames.Size == 0 {
		c.Frames.Size = defaultFrameSize
	}
}

func (c *Config) normalizeIcon() {
	c.Icon.ColorTop = strings.TrimSpace(c.Icon.ColorTop)
	if c.Icon.ColorTop == "" {
		c.Icon.ColorTop = defaultColorTop
	}
	c.Icon.ColorBottom = strings.TrimSpace(c.Icon.ColorBottom)
	if c.Icon.ColorBottom == "" {
		c.Icon.ColorBottom = defaultColorBottom
	}
	if c.Icon.Supersample == 0 {
		c.Icon.Supersample = defaultSupersample
	}
}

func (c *Config) normalizeSounds() {
	c.Sounds.ManifestName = strings.TrimSpace(c.Sounds.ManifestName)
	if c.Sounds.ManifestName == "" {
		c.Sounds.ManifestName = defaultManifestName
	}
	c.Sounds.DefaultCategory = strings.TrimSpace(c.Sounds.DefaultCategory)
	if c.Sounds.DefaultCategory == "" {
		c.Sounds.DefaultCategory = defaultCategory
	}
	c.Sounds.SupportedExtensions = normalizeExtensions(c.Sounds.SupportedExtensions)
	if len(c.Sounds.SupportedExtensions) == 0 {
		c.Sounds.SupportedExtensions = append([]string(nil), defaultSupportedExtensions...)
	}
	c.Sounds.ConvertibleExtensions = normalizeExtensions(c.Sounds.ConvertibleExtensions)
	if c.Sounds.WaveformBars == 0 {
		c.Sounds.WaveformBars = defaultWaveformBars
	}
}

// normalizeExtensions lower-cases, dot-prefixes, and dedupes extension lists.
func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		if value, ok := os.LookupEnv("PATTIPREP_FFMPEG"); ok {
			c.Tools.FFmpeg = strings.TrimSpace(value)
		}
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		if value, ok := os.LookupEnv("PATTIPREP_FFPROBE"); ok {
			c.Tools.FFprobe = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
