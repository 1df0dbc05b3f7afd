package icon

import (
	"encoding/json"
	"fmt"
)

// ContentsName is the asset catalog descriptor written beside the PNGs.
const ContentsName = "Contents.json"

// Size is one slot of the macOS app icon set.
type Size struct {
	Points int
	Scale  int
}

// Pixels is the rendered edge length.
func (s Size) Pixels() int { return s.Points * s.Scale }

// FileName follows Xcode's icon_NxN[@2x].png convention.
func (s Size) FileName() string {
	if s.Scale > 1 {
		return fmt.Sprintf("icon_%dx%d@%dx.png", s.Points, s.Points, s.Scale)
	}
	return fmt.Sprintf("icon_%dx%d.png", s.Points, s.Points)
}

// MacSizes lists every slot of a macOS AppIcon set.
var MacSizes = []Size{
	{16, 1}, {16, 2},
	{32, 1}, {32, 2},
	{128, 1}, {128, 2},
	{256, 1}, {256, 2},
	{512, 1}, {512, 2},
}

type catalogImage struct {
	Size     string `json:"size"`
	Idiom    string `json:"idiom"`
	Filename string `json:"filename"`
	Scale    string `json:"scale"`
}

type catalogInfo struct {
	Version int    `json:"version"`
	Author  string `json:"author"`
}

type catalog struct {
	Images []catalogImage `json:"images"`
	Info   catalogInfo    `json:"info"`
}

// EncodeContents renders the Contents.json describing sizes.
func EncodeContents(sizes []Size) ([]byte, error) {
	doc := catalog{Info: catalogInfo{Version: 1, Author: "xcode"}}
	doc.Images = make([]catalogImage, 0, len(sizes))
	for _, s := range sizes {
		doc.Images = append(doc.Images, catalogImage{
			Size:     fmt.Sprintf("%dx%d", s.Points, s.Points),
			Idiom:    "mac",
			Filename: s.FileName(),
			Scale:    fmt.Sprintf("%dx", s.Scale),
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ContentsName, err)
	}
	return append(data, '\n'), nil
}
