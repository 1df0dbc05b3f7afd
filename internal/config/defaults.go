package config

const (
	// FrameModeOutline renders black line art with luminance-derived alpha.
	FrameModeOutline = "outline"
	// FrameModeTemplate renders plain grayscale frames.
	FrameModeTemplate = "template"
)

const (
	defaultGIFDir            = "buttsss/fractured-but-whole"
	defaultFramesDir         = "ButtFrames"
	defaultTemplateFramesDir = "ButtFramesTemplate"
	defaultIconSourceName    = "Asynchronous-Butt.gif"
	defaultIconDir           = "pattiSpecialButton/Assets.xcassets/AppIcon.appiconset"
	defaultSoundsDir         = "sounds"
	defaultShuffleSubdir     = "shuffle"
	defaultSegmentsSubdir    = "segments"
	defaultFrameSize         = 160
	defaultCanvasSize        = 1024
	defaultBodySize          = 824
	defaultSquircleExponent  = 5.0
	defaultSupersample       = 4
	defaultArtScale          = 0.72
	defaultColorTop          = "#FFF5EE"
	defaultColorBottom       = "#FFCDBE"
	defaultManifestName      = "sounds-manifest.json"
	defaultCategory          = "uncategorized"
	defaultWaveformBars      = 25
	defaultSilenceThreshDB   = -40
	defaultMinSilenceMs      = 200
	defaultPaddingMs         = 50
	defaultMinSegmentMs      = 100
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

var (
	defaultSupportedExtensions   = []string{".wav", ".mp3", ".m4a", ".aiff"}
	defaultConvertibleExtensions = []string{".flac", ".ogg", ".wma", ".opus"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			GIFDir:            defaultGIFDir,
			FramesDir:         defaultFramesDir,
			TemplateFramesDir: defaultTemplateFramesDir,
			IconDir:           defaultIconDir,
			SoundsDir:         defaultSoundsDir,
			CacheDir:          defaultCacheDir(),
		},
		Frames: Frames{
			Size: defaultFrameSize,
			Mode: FrameModeOutline,
		},
		Icon: Icon{
			CanvasSize:       defaultCanvasSize,
			BodySize:         defaultBodySize,
			SquircleExponent: defaultSquircleExponent,
			Supersample:      defaultSupersample,
			ArtScale:         defaultArtScale,
			ColorTop:         defaultColorTop,
			ColorBottom:      defaultColorBottom,
		},
		Sounds: Sounds{
			ManifestName:          defaultManifestName,
			DefaultCategory:       defaultCategory,
			SupportedExtensions:   append([]string(nil), defaultSupportedExtensions...),
			ConvertibleExtensions: append([]string(nil), defaultConvertibleExtensions...),
			WaveformBars:          defaultWaveformBars,
		},
		Segments: Segments{
			SilenceThreshDB: defaultSilenceThreshDB,
			MinSilenceMs:    defaultMinSilenceMs,
			PaddingMs:       defaultPaddingMs,
			MinSegmentMs:    defaultMinSegmentMs,
		},
		Cache: Cache{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
