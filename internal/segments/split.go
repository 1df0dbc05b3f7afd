package segments

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pattiprep/internal/media/pcm"
)

// Options controls detection and export.
type Options struct {
	SilenceThreshDB float64
	MinSilenceMs    int
	PaddingMs       int
	MinSegmentMs    int
}

// DefaultOptions returns the tuning used for shuffle sounds.
func DefaultOptions() Options {
	return Options{
		SilenceThreshDB: -40,
		MinSilenceMs:    200,
		PaddingMs:       50,
		MinSegmentMs:    100,
	}
}

// Segment is one exportable piece of a source recording. Index is the
// position of the range in the detected list, so dropped ranges leave gaps.
type Segment struct {
	Index int   `json:"index"`
	Range Range `json:"range"`
}

// Plan detects non-silent ranges, pads them, and drops those shorter than
// the minimum segment length.
func Plan(a pcm.Audio, opts Options) []Segment {
	length := a.DurationMs()
	ranges := DetectNonSilent(a, opts.MinSilenceMs, opts.SilenceThreshDB)
	segments := make([]Segment, 0, len(ranges))
	for i, r := range ranges {
		start := max(0, r.StartMs-opts.PaddingMs)
		end := min(length, r.EndMs+opts.PaddingMs)
		if end-start < opts.MinSegmentMs {
			continue
		}
		segments = append(segments, Segment{Index: i, Range: Range{StartMs: start, EndMs: end}})
	}
	return segments
}

// FileName returns the exported file name for segment index of base.
func FileName(base string, index int) string {
	return fmt.Sprintf("shuffle_%s_%02d.wav", base, index)
}

// Export writes each planned segment of a into outDir and returns the written
// paths in plan order.
func Export(a pcm.Audio, plan []Segment, outDir, base string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create segments dir: %w", err)
	}
	paths := make([]string, 0, len(plan))
	for _, seg := range plan {
		path := filepath.Join(outDir, FileName(base, seg.Index))
		if err := pcm.WriteWAV(path, a.Slice(seg.Range.StartMs, seg.Range.EndMs)); err != nil {
			return paths, fmt.Errorf("export segment %d: %w", seg.Index, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Split plans and exports segments of a in one step.
func Split(a pcm.Audio, outDir, base string, opts Options) ([]string, error) {
	return Export(a, Plan(a, opts), outDir, base)
}

// Existing lists segment files already present for base, sorted by name.
func Existing(outDir, base string) ([]string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	prefix := "shuffle_" + base + "_"
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".wav") {
			continue
		}
		if !isIndex(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".wav")) {
			continue
		}
		paths = append(paths, filepath.Join(outDir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// RemoveExisting deletes previously exported segments for base.
func RemoveExisting(outDir, base string) (int, error) {
	paths, err := Existing(outDir, base)
	if err != nil {
		return 0, err
	}
	for i, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return i, fmt.Errorf("remove stale segment: %w", err)
		}
	}
	return len(paths), nil
}

func isIndex(value string) bool {
	if len(value) < 2 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the options compactly; it doubles as a cache fingerprint.
func (o Options) String() string {
	return fmt.Sprintf("thresh=%g min_silence=%d padding=%d min_segment=%d",
		o.SilenceThreshDB, o.MinSilenceMs, o.PaddingMs, o.MinSegmentMs)
}

// Orphans lists exported segment files in outDir whose base is not in keep.
func Orphans(outDir string, keep map[string]struct{}) ([]string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := segmentBase(entry.Name())
		if !ok {
			continue
		}
		if _, kept := keep[base]; kept {
			continue
		}
		paths = append(paths, filepath.Join(outDir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// segmentBase extracts base from a shuffle_<base>_<NN>.wav name.
func segmentBase(name string) (string, bool) {
	if !strings.HasPrefix(name, "shuffle_") || !strings.HasSuffix(name, ".wav") {
		return "", false
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, "shuffle_"), ".wav")
	cut := strings.LastIndex(trimmed, "_")
	if cut <= 0 || !isIndex(trimmed[cut+1:]) {
		return "", false
	}
	return trimmed[:cut], true
}
