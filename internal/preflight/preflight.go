package preflight

import "pattiprep/internal/config"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed reports whether a required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

// RunAll executes the filesystem checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryReadable("GIF directory", cfg.Paths.GIFDir),
		CheckFileReadable("Icon source", cfg.Paths.IconSource),
		CheckDirectoryAccess("Sounds directory", cfg.Paths.SoundsDir),
		CheckWritableTarget("Frames output", cfg.Paths.FramesDir),
		CheckWritableTarget("Template frames output", cfg.Paths.TemplateFramesDir),
		CheckWritableTarget("Icon output", cfg.Paths.IconDir),
		CheckWritableTarget("Segments output", cfg.Paths.SegmentsDir),
	}
	shuffle := CheckDirectoryReadable("Shuffle directory", cfg.Paths.ShuffleDir)
	shuffle.Optional = true
	results = append(results, shuffle)
	if cfg.Cache.Enabled {
		results = append(results, CheckWritableTarget("Cache directory", cfg.Paths.CacheDir))
	}
	return results
}
