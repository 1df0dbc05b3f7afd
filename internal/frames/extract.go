package frames

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"golang.org/x/image/draw"
)

const (
	// minDelayMs is the smallest delay kept as-is; anything shorter becomes
	// fallbackDelayMs, matching how browsers treat zero-delay GIFs.
	minDelayMs      = 10
	fallbackDelayMs = 100
)

// Animation is a decoded GIF with every frame fully composited onto white.
type Animation struct {
	Width    int
	Height   int
	Frames   []*image.RGBA
	DelaysMs []int
}

// Len returns the number of frames.
func (a *Animation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Frames)
}

// Extract decodes the GIF at path.
func Extract(path string) (*Animation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gif: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads every frame of a GIF stream.
func Decode(r io.Reader) (*Animation, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("decode gif: no frames")
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		screen = g.Image[0].Bounds()
		for _, frame := range g.Image[1:] {
			screen = screen.Union(frame.Bounds())
		}
	}

	anim := &Animation{Width: screen.Dx(), Height: screen.Dy()}
	work := image.NewRGBA(screen)
	flat := image.NewRGBA(screen)
	draw.Draw(flat, screen, image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, frame := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(work)
		}

		bounds := frame.Bounds().Intersect(screen)
		draw.Draw(work, bounds, frame, bounds.Min, draw.Over)
		draw.Draw(flat, screen, work, screen.Min, draw.Over)
		anim.Frames = append(anim.Frames, cloneRGBA(flat))

		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		anim.DelaysMs = append(anim.DelaysMs, delayMs(delay))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(work, bounds, image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			work = previous
		}
	}
	return anim, nil
}

// delayMs converts a GIF delay in hundredths of a second to milliseconds.
func delayMs(centiseconds int) int {
	ms := centiseconds * 10
	if ms < minDelayMs {
		return fallbackDelayMs
	}
	return ms
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
