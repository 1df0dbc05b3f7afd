package icon_test

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pattiprep/internal/config"
	"pattiprep/internal/icon"
	"pattiprep/internal/logging"
	"pattiprep/internal/pipeline"
	"pattiprep/internal/testsupport"
)

func smallIconConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Icon.CanvasSize = 64
	cfg.Icon.BodySize = 52
	cfg.Icon.Supersample = 2
	return cfg
}

func TestGradientTruncatesChannels(t *testing.T) {
	top := color.RGBA{255, 245, 238, 255}
	bottom := color.RGBA{255, 205, 190, 255}
	img := icon.Gradient(3, top, bottom)

	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{255, 245, 238, 255}) {
		t.Fatalf("top-left mismatch: %+v", got)
	}
	if got := img.NRGBAAt(2, 2); got != (color.NRGBA{255, 205, 190, 255}) {
		t.Fatalf("bottom-right mismatch: %+v", got)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{255, 235, 226, 255}) {
		t.Fatalf("quarter point mismatch: %+v", got)
	}
}

func TestParseColor(t *testing.T) {
	c, err := icon.ParseColor("#FFCDBE")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c != (color.RGBA{255, 205, 190, 255}) {
		t.Fatalf("unexpected colour %+v", c)
	}
	if icon.HexColor(c) != "#FFCDBE" {
		t.Fatalf("unexpected hex %s", icon.HexColor(c))
	}
	if _, err := icon.ParseColor("peach"); err == nil {
		t.Fatal("expected error for invalid colour")
	}
}

func TestSquircleMask(t *testing.T) {
	mask := icon.SquircleMask(64, 52, 5, 2)
	if mask.Bounds().Dx() != 64 || mask.Bounds().Dy() != 64 {
		t.Fatalf("unexpected mask size %v", mask.Bounds())
	}
	if mask.GrayAt(32, 32).Y != 255 {
		t.Fatalf("centre should be inside, got %d", mask.GrayAt(32, 32).Y)
	}
	if mask.GrayAt(1, 1).Y != 0 || mask.GrayAt(32, 62).Y != 0 {
		t.Fatal("corners and margins should be outside")
	}
	// A superellipse with n=5 fills far more of the corner than a circle.
	if mask.GrayAt(14, 14).Y < 200 {
		t.Fatalf("squircle corner should be mostly filled, got %d", mask.GrayAt(14, 14).Y)
	}
}

func TestGeometryArtPlacement(t *testing.T) {
	g := icon.Geometry{Canvas: 1024, Body: 824, ArtScale: 0.72}
	if g.ArtSize() != 593 {
		t.Fatalf("expected art size 593, got %d", g.ArtSize())
	}
	if g.ArtOffset() != 215 {
		t.Fatalf("expected offset 215, got %d", g.ArtOffset())
	}
}

func TestBuildMasterComposesArtOverGradient(t *testing.T) {
	cfg := smallIconConfig(t)
	testsupport.WriteGIF(t, cfg.Paths.IconSource, 32, 2, 10)
	art, err := icon.ExtractArt(cfg.Paths.IconSource)
	if err != nil {
		t.Fatalf("ExtractArt: %v", err)
	}
	g, err := icon.GeometryFromConfig(cfg.Icon)
	if err != nil {
		t.Fatalf("GeometryFromConfig: %v", err)
	}
	master := icon.BuildMaster(g, art)

	if master.RGBAAt(0, 0).A != 0 {
		t.Fatalf("outside the squircle should be transparent, got %+v", master.RGBAAt(0, 0))
	}
	if px := master.RGBAAt(16, 16); px.A != 255 || px.R > 30 {
		t.Fatalf("art pixel should be opaque black, got %+v", px)
	}
	if px := master.RGBAAt(45, 45); px.A != 255 || px.R < 200 {
		t.Fatalf("background pixel should show the gradient, got %+v", px)
	}
}

func TestEncodeContents(t *testing.T) {
	data, err := icon.EncodeContents(icon.MacSizes)
	if err != nil {
		t.Fatalf("EncodeContents: %v", err)
	}
	var doc struct {
		Images []map[string]string `json:"images"`
		Info   struct {
			Version int    `json:"version"`
			Author  string `json:"author"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Images) != 10 {
		t.Fatalf("expected 10 images, got %d", len(doc.Images))
	}
	first, last := doc.Images[0], doc.Images[9]
	if first["size"] != "16x16" || first["idiom"] != "mac" || first["filename"] != "icon_16x16.png" || first["scale"] != "1x" {
		t.Fatalf("unexpected first image %v", first)
	}
	if last["filename"] != "icon_512x512@2x.png" || last["scale"] != "2x" {
		t.Fatalf("unexpected last image %v", last)
	}
	if doc.Info.Version != 1 || doc.Info.Author != "xcode" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
}

func TestRunnerWritesIconSet(t *testing.T) {
	cfg := smallIconConfig(t)
	testsupport.WriteGIF(t, cfg.Paths.IconSource, 32, 2, 10)

	summary, err := icon.NewRunner(cfg, logging.NewNop()).Run(context.Background(), icon.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Outputs) != len(icon.MacSizes) {
		t.Fatalf("unexpected outputs %+v", summary.Outputs)
	}
	for _, size := range icon.MacSizes {
		path := filepath.Join(cfg.Paths.IconDir, size.FileName())
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		conf, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if conf.Width != size.Pixels() || conf.Height != size.Pixels() {
			t.Fatalf("%s: expected %dpx, got %dx%d", size.FileName(), size.Pixels(), conf.Width, conf.Height)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.IconDir, icon.ContentsName)); err != nil {
		t.Fatalf("Contents.json missing: %v", err)
	}
}

func TestRunnerSourceOverrideAndDryRun(t *testing.T) {
	cfg := smallIconConfig(t)
	alt := filepath.Join(testsupport.BaseDir(cfg), "alt", "Other-Butt.gif")
	testsupport.WriteGIF(t, alt, 16, 1, 10)

	summary, err := icon.NewRunner(cfg, nil).Run(context.Background(), icon.Options{Source: alt, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Source != alt || !summary.DryRun {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := os.Stat(cfg.Paths.IconDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created icon dir: %v", err)
	}
}

func TestRunnerErrors(t *testing.T) {
	cfg := smallIconConfig(t)
	_, err := icon.NewRunner(cfg, nil).Run(context.Background(), icon.Options{})
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	testsupport.WriteFile(t, cfg.Paths.IconSource, 10)
	_, err = icon.NewRunner(cfg, nil).Run(context.Background(), icon.Options{})
	if !errors.Is(err, pipeline.ErrValidation) {
		t.Fatalf("expected ErrValidation for a corrupt gif, got %v", err)
	}

	cfg.Icon.ColorTop = "not-a-colour"
	_, err = icon.NewRunner(cfg, nil).Run(context.Background(), icon.Options{})
	if !errors.Is(err, pipeline.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

