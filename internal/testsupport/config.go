package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pattiprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose asset directories live under a unique
// temp directory. Directories are not created; tests create what they need.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Root = base
	cfgVal.Paths.GIFDir = filepath.Join(base, "gifs")
	cfgVal.Paths.FramesDir = filepath.Join(base, "ButtFrames")
	cfgVal.Paths.TemplateFramesDir = filepath.Join(base, "ButtFramesTemplate")
	cfgVal.Paths.IconSource = filepath.Join(base, "gifs", "Asynchronous-Butt.gif")
	cfgVal.Paths.IconDir = filepath.Join(base, "AppIcon.appiconset")
	cfgVal.Paths.SoundsDir = filepath.Join(base, "sounds")
	cfgVal.Paths.ShuffleDir = filepath.Join(base, "sounds", "shuffle")
	cfgVal.Paths.SegmentsDir = filepath.Join(base, "sounds", "segments")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Cache.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCache enables the analysis cache in the test config.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// WithFFmpegScript installs a stub ffmpeg running body and points
// tools.ffmpeg at it.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.FFmpeg = StubBinary(b.t, filepath.Join(b.baseDir, "tools"), "ffmpeg", body)
	}
}

// WithFFprobeScript installs a stub ffprobe running body and points
// tools.ffprobe at it.
func WithFFprobeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.FFprobe = StubBinary(b.t, filepath.Join(b.baseDir, "tools"), "ffprobe", body)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			StubBinary(b.t, binDir, name, "exit 0\n")
		}

		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// StubBinary writes an executable shell script named name into dir and
// returns its path.
func StubBinary(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	target := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.Root
}
