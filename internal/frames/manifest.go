package frames

import (
	"encoding/json"
	"fmt"
	"sort"

	"pattiprep/internal/fileutil"
)

// ManifestName is the file written beside the frame directories.
const ManifestName = "manifest.json"

// Butt describes one animation in the frame manifest.
type Butt struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FrameCount  int    `json:"frameCount"`
	FrameDelays []int  `json:"frameDelays"`
}

// Manifest is the document the app loads to find frame sequences.
type Manifest struct {
	Butts []Butt `json:"butts"`
}

// EncodeManifest renders butts sorted by id with two-space indentation and a
// trailing newline.
func EncodeManifest(butts []Butt) ([]byte, error) {
	sorted := append([]Butt(nil), butts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i := range sorted {
		if sorted[i].FrameDelays == nil {
			sorted[i].FrameDelays = []int{}
		}
	}
	if sorted == nil {
		sorted = []Butt{}
	}
	data, err := json.MarshalIndent(Manifest{Butts: sorted}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode frame manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteManifest writes the manifest to path atomically.
func WriteManifest(path string, butts []Butt) error {
	data, err := EncodeManifest(butts)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
