package frames_test

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pattiprep/internal/config"
	"pattiprep/internal/frames"
	"pattiprep/internal/logging"
	"pattiprep/internal/pipeline"
	"pattiprep/internal/testsupport"
)

func TestExtractConvertsDelays(t *testing.T) {
	dir := t.TempDir()
	fast := filepath.Join(dir, "fast.gif")
	slow := filepath.Join(dir, "slow.gif")
	testsupport.WriteGIF(t, fast, 16, 2, 0)
	testsupport.WriteGIF(t, slow, 16, 2, 7)

	anim, err := frames.Extract(fast)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if anim.Len() != 2 || anim.DelaysMs[0] != 100 || anim.DelaysMs[1] != 100 {
		t.Fatalf("zero delay should become 100ms, got %v", anim.DelaysMs)
	}
	anim, err = frames.Extract(slow)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if anim.DelaysMs[0] != 70 {
		t.Fatalf("expected 70ms, got %v", anim.DelaysMs)
	}
	if anim.Width != 16 || anim.Height != 16 {
		t.Fatalf("unexpected dimensions %dx%d", anim.Width, anim.Height)
	}
}

func TestExtractHonoursDisposalPrevious(t *testing.T) {
	palette := color.Palette{color.White, color.Black, color.Transparent}
	base := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	base.SetColorIndex(0, 0, 1)
	overlay := image.NewPaletted(image.Rect(2, 2, 4, 4), palette)
	for y := 2; y < 4; y++ {
		for x := 2; x < 4; x++ {
			overlay.SetColorIndex(x, y, 1)
		}
	}
	dot := image.NewPaletted(image.Rect(3, 0, 4, 1), palette)
	dot.SetColorIndex(3, 0, 1)

	path := filepath.Join(t.TempDir(), "disposal.gif")
	testsupport.WriteRawGIF(t, path, &gif.GIF{
		Image:    []*image.Paletted{base, overlay, dot},
		Delay:    []int{10, 10, 10},
		Disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
		Config:   image.Config{ColorModel: palette, Width: 4, Height: 4},
	})

	anim, err := frames.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if anim.Len() != 3 {
		t.Fatalf("expected 3 frames, got %d", anim.Len())
	}
	isBlack := func(img *image.RGBA, x, y int) bool {
		c := img.RGBAAt(x, y)
		return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 255
	}
	if !isBlack(anim.Frames[1], 3, 3) {
		t.Fatal("overlay should be visible on frame 1")
	}
	if isBlack(anim.Frames[2], 3, 3) {
		t.Fatal("overlay should be restored away on frame 2")
	}
	if !isBlack(anim.Frames[2], 0, 0) || !isBlack(anim.Frames[2], 3, 0) {
		t.Fatal("frame 2 should keep base pixel and add its own")
	}
}

func TestExtractHonoursDisposalBackground(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	palette := color.Palette{color.White, color.Black, color.Transparent, red}
	base := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	base.SetColorIndex(0, 0, 1)
	overlay := image.NewPaletted(image.Rect(2, 2, 4, 4), palette)
	for y := 2; y < 4; y++ {
		for x := 2; x < 4; x++ {
			overlay.SetColorIndex(x, y, 1)
		}
	}
	patch := image.NewPaletted(image.Rect(3, 3, 4, 4), palette)
	patch.SetColorIndex(3, 3, 3)
	dot := image.NewPaletted(image.Rect(0, 3, 1, 4), palette)
	dot.SetColorIndex(0, 3, 1)

	path := filepath.Join(t.TempDir(), "background.gif")
	testsupport.WriteRawGIF(t, path, &gif.GIF{
		Image:    []*image.Paletted{base, overlay, patch, dot},
		Delay:    []int{10, 10, 10, 10},
		Disposal: []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalPrevious, gif.DisposalNone},
		Config:   image.Config{ColorModel: palette, Width: 4, Height: 4},
	})

	anim, err := frames.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if anim.Len() != 4 {
		t.Fatalf("expected 4 frames, got %d", anim.Len())
	}

	// W white, B black, R red.
	want := map[int][]string{
		1: {"BWWW", "WWWW", "WWBB", "WWBB"},
		2: {"BWWW", "WWWW", "WWBB", "WWBR"},
		3: {"BWWW", "WWWW", "WWBB", "BWBR"},
	}
	shades := map[byte]color.RGBA{
		'W': {R: 255, G: 255, B: 255, A: 255},
		'B': {A: 255},
		'R': red,
	}
	for frame, rows := range want {
		img := anim.Frames[frame]
		for y, row := range rows {
			for x := range row {
				if got := img.RGBAAt(x, y); got != shades[row[x]] {
					t.Fatalf("frame %d pixel (%d,%d) = %+v, want %c", frame, x, y, got, row[x])
				}
			}
		}
	}
}

func TestProcessOutlineMapsLuminanceToAlpha(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x < 16 && y < 16 {
				c = color.RGBA{0, 0, 0, 255}
			}
			src.SetRGBA(x, y, c)
		}
	}

	out := frames.ProcessOutline(src, 160)
	if out.Bounds().Dx() != 160 || out.Bounds().Dy() != 160 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
	dark := out.NRGBAAt(40, 40)
	if dark.A < 240 || dark.R != 0 || dark.G != 0 || dark.B != 0 {
		t.Fatalf("dark region should be opaque black, got %+v", dark)
	}
	if light := out.NRGBAAt(140, 140); light.A > 15 {
		t.Fatalf("white region should be transparent, got %+v", light)
	}

	tmpl := frames.ProcessTemplate(src, 160)
	if tmpl.GrayAt(40, 40).Y > 15 || tmpl.GrayAt(140, 140).Y < 240 {
		t.Fatalf("template should keep luminance, got %v / %v", tmpl.GrayAt(40, 40), tmpl.GrayAt(140, 140))
	}
}

func TestEncodeManifestSortsAndIndents(t *testing.T) {
	data, err := frames.EncodeManifest([]frames.Butt{
		{ID: "zebra", Name: "Zebra", FrameCount: 1, FrameDelays: []int{100}},
		{ID: "alien-butt", Name: "Alien Butt", FrameCount: 2, FrameDelays: []int{50, 60}},
	})
	if err != nil {
		t.Fatalf("EncodeManifest: %v", err)
	}
	want := `{
  "butts": [
    {
      "id": "alien-butt",
      "name": "Alien Butt",
      "frameCount": 2,
      "frameDelays": [
        50,
        60
      ]
    },
    {
      "id": "zebra",
      "name": "Zebra",
      "frameCount": 1,
      "frameDelays": [
        100
      ]
    }
  ]
}
`
	if string(data) != want {
		t.Fatalf("manifest mismatch:\n%s", data)
	}

	empty, err := frames.EncodeManifest(nil)
	if err != nil {
		t.Fatalf("EncodeManifest(nil): %v", err)
	}
	if string(empty) != "{\n  \"butts\": []\n}\n" {
		t.Fatalf("unexpected empty manifest %q", empty)
	}
}

func TestRunnerWritesFramesAndManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteGIF(t, filepath.Join(cfg.Paths.GIFDir, "Alien-Butt.gif"), 32, 3, 5)
	testsupport.WriteGIF(t, filepath.Join(cfg.Paths.GIFDir, "easterBunny.gif"), 32, 1, 5)
	if err := os.WriteFile(filepath.Join(cfg.Paths.GIFDir, "broken.gif"), []byte("not a gif"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(cfg.Paths.FramesDir, "old-butt", "frame_00.png")
	testsupport.WriteFile(t, stale, 4)

	summary, err := frames.NewRunner(cfg, logging.NewNop()).Run(context.Background(), frames.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 2 || len(summary.Skipped) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Skipped[0].Source != "broken.gif" {
		t.Fatalf("expected broken.gif skipped, got %+v", summary.Skipped)
	}
	if summary.TotalFrames() != 4 {
		t.Fatalf("expected 4 frames, got %d", summary.TotalFrames())
	}
	if !summary.Results[1].Static {
		t.Fatalf("single-frame gif should be flagged static: %+v", summary.Results[1])
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale output should be removed, stat err=%v", err)
	}

	for i := 0; i < 3; i++ {
		path := filepath.Join(cfg.Paths.FramesDir, "alien-butt", frames.FrameFileName(i))
		img := decodePNG(t, path)
		if _, ok := img.(*image.NRGBA); !ok {
			t.Fatalf("outline frame should be NRGBA, got %T", img)
		}
		if img.Bounds().Dx() != cfg.Frames.Size {
			t.Fatalf("unexpected frame size %v", img.Bounds())
		}
	}

	data, err := os.ReadFile(summary.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var doc frames.Manifest
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(doc.Butts) != 2 {
		t.Fatalf("expected 2 butts, got %+v", doc.Butts)
	}
	first := doc.Butts[0]
	if first.ID != "alien-butt" || first.Name != "Alien Butt" || first.FrameCount != 3 {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if len(first.FrameDelays) != 3 || first.FrameDelays[0] != 50 {
		t.Fatalf("unexpected delays %v", first.FrameDelays)
	}
	if doc.Butts[1].ID != "easterbunny" || doc.Butts[1].Name != "Easter Bunny" {
		t.Fatalf("unexpected second entry %+v", doc.Butts[1])
	}
}

func TestRunnerTemplateMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteGIF(t, filepath.Join(cfg.Paths.GIFDir, "wiggle.gif"), 16, 2, 10)

	summary, err := frames.NewRunner(cfg, nil).Run(context.Background(), frames.Options{Mode: config.FrameModeTemplate})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.OutputDir != cfg.Paths.TemplateFramesDir {
		t.Fatalf("template output should go to %s, got %s", cfg.Paths.TemplateFramesDir, summary.OutputDir)
	}
	img := decodePNG(t, filepath.Join(cfg.Paths.TemplateFramesDir, "wiggle", "frame_01.png"))
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("template frame should be grayscale, got %T", img)
	}
}

func TestRunnerDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteGIF(t, filepath.Join(cfg.Paths.GIFDir, "wiggle.gif"), 16, 2, 10)

	summary, err := frames.NewRunner(cfg, nil).Run(context.Background(), frames.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 1 || summary.Results[0].FrameCount != 2 {
		t.Fatalf("dry run should still report frames: %+v", summary)
	}
	if _, err := os.Stat(cfg.Paths.FramesDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created output dir: %v", err)
	}
}

func TestRunnerErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.GIFDir, 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := frames.NewRunner(cfg, nil).Run(context.Background(), frames.Options{})
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = frames.NewRunner(cfg, nil).Run(context.Background(), frames.Options{Mode: "sepia"})
	if !errors.Is(err, pipeline.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}
