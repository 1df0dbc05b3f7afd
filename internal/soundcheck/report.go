package soundcheck

import (
	"sort"

	"pattiprep/internal/manifest"
)

// Conversion records one ffmpeg conversion.
type Conversion struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Planned bool   `json:"planned,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded reports whether the conversion ran and produced the target.
func (c Conversion) Succeeded() bool {
	return !c.Planned && c.Error == ""
}

// ShuffleResult records segmentation of one shuffle source.
type ShuffleResult struct {
	Source   string   `json:"source"`
	Base     string   `json:"base"`
	Segments []string `json:"segments"`
	Stale    int      `json:"stale_removed,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// EntryRef identifies a manifest entry in a report.
type EntryRef struct {
	ID       string `json:"id"`
	File     string `json:"file"`
	Category string `json:"category"`
}

// CategoryCount is one row of the per-category summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Report describes a sounds run; it is also the --json payload.
type Report struct {
	SoundsDir       string          `json:"sounds_dir"`
	ManifestPath    string          `json:"manifest_path"`
	DryRun          bool            `json:"dry_run"`
	NothingToDo     bool            `json:"nothing_to_do"`
	Scanned         int             `json:"scanned"`
	Conversions     []Conversion    `json:"conversions,omitempty"`
	Shuffle         []ShuffleResult `json:"shuffle,omitempty"`
	OrphanSegments  []string        `json:"orphan_segments,omitempty"`
	ManifestReset   bool            `json:"manifest_reset,omitempty"`
	Added           []EntryRef      `json:"added,omitempty"`
	Removed         []EntryRef      `json:"removed,omitempty"`
	Adopted         []EntryRef      `json:"adopted,omitempty"`
	WaveformErrors  []string        `json:"waveform_errors,omitempty"`
	Categories      []CategoryCount `json:"categories"`
	Total           int             `json:"total"`
	DefaultCategory string          `json:"default_category"`
	Written         bool            `json:"written"`
}

func refs(entries []manifest.Entry) []EntryRef {
	if len(entries) == 0 {
		return nil
	}
	out := make([]EntryRef, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryRef{ID: e.ID, File: e.FileName(), Category: e.Category})
	}
	return out
}

func categoryCounts(entries []manifest.Entry) []CategoryCount {
	counts := manifest.CategoryCounts(entries)
	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
