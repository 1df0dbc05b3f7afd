package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains asset directory configuration. Relative values resolve
// against Root.
type Paths struct {
	Root              string `toml:"root"`
	GIFDir            string `toml:"gif_dir"`
	FramesDir         string `toml:"frames_dir"`
	TemplateFramesDir string `toml:"template_frames_dir"`
	IconSource        string `toml:"icon_source"`
	IconDir           string `toml:"icon_dir"`
	SoundsDir         string `toml:"sounds_dir"`
	ShuffleDir        string `toml:"shuffle_dir"`
	SegmentsDir       string `toml:"segments_dir"`
	CacheDir          string `toml:"cache_dir"`
}

// Frames contains configuration for GIF frame extraction.
type Frames struct {
	Size int    `toml:"size"`
	Mode string `toml:"mode"`
}

// Icon contains configuration for app icon rendering.
type Icon struct {
	CanvasSize       int     `toml:"canvas_size"`
	BodySize         int     `toml:"body_size"`
	SquircleExponent float64 `toml:"squircle_exponent"`
	Supersample      int     `toml:"supersample"`
	ArtScale         float64 `toml:"art_scale"`
	ColorTop         string  `toml:"color_top"`
	ColorBottom      string  `toml:"color_bottom"`
}

// Sounds contains configuration for the sound asset manager.
type Sounds struct {
	ManifestName          string   `toml:"manifest_name"`
	DefaultCategory       string   `toml:"default_category"`
	SupportedExtensions   []string `toml:"supported_extensions"`
	ConvertibleExtensions []string `toml:"convertible_extensions"`
	WaveformBars          int      `toml:"waveform_bars"`
}

// Segments contains silence detection settings for shuffle files.
type Segments struct {
	SilenceThreshDB float64 `toml:"silence_thresh_db"`
	MinSilenceMs    int     `toml:"min_silence_ms"`
	PaddingMs       int     `toml:"padding_ms"`
	MinSegmentMs    int     `toml:"min_segment_ms"`
}

// Tools names the external binaries used for audio work.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Cache controls the audio analysis cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pattiprep.
//
// Configuration sections by job:
//   - Paths: source and output directories
//   - Frames: GIF frame extraction
//   - Icon: app icon rendering
//   - Sounds: sound manifest management
//   - Segments: silence splitting for shuffle sounds
//   - Tools: ffmpeg/ffprobe binaries
//   - Cache: audio analysis cache
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Frames   Frames   `toml:"frames"`
	Icon     Icon     `toml:"icon"`
	Sounds   Sounds   `toml:"sounds"`
	Segments Segments `toml:"segments"`
	Tools    Tools    `toml:"tools"`
	Cache    Cache    `toml:"cache"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pattiprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	baseDir := ""
	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		baseDir = filepath.Dir(resolvedPath)
	}

	if err := cfg.normalize(baseDir); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pattiprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// FFmpegBinary returns the ffmpeg executable used for conversion and decoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFmpeg); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for audio inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFprobe); bin != "" {
		return bin
	}
	return "ffprobe"
}

// ManifestPath returns the sound manifest location.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.SoundsDir, c.Sounds.ManifestName)
}

// CacheDBPath returns the analysis cache database location.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Paths.CacheDir, "analysis.db")
}

// FramesOutputDir returns the frame output directory for the given mode.
func (c *Config) FramesOutputDir(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), FrameModeTemplate) {
		return c.Paths.TemplateFramesDir
	}
	return c.Paths.FramesDir
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// resolveUnder expands pathValue, joining relative values onto root.
func resolveUnder(root, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(root, pathValue)
	}
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "pattiprep")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/pattiprep"
	}
	return filepath.Join(home, ".cache", "pattiprep")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
