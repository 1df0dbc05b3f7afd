package icon

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"pattiprep/internal/frames"
)

// squirclePoints is the polygon resolution used for the superellipse outline.
const squirclePoints = 2000

// Geometry holds the master icon layout.
type Geometry struct {
	Canvas      int
	Body        int
	Exponent    float64
	Supersample int
	ArtScale    float64
	Top         color.RGBA
	Bottom      color.RGBA
}

// ArtSize is the edge length of the centred line art.
func (g Geometry) ArtSize() int {
	return int(float64(g.Body) * g.ArtScale)
}

// ArtOffset is the top-left coordinate of the centred line art.
func (g Geometry) ArtOffset() int {
	return (g.Canvas - g.ArtSize()) / 2
}

// ParseColor reads a #RRGGBB string into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexColor formats an opaque colour as #RRGGBB.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ExtractArt turns frame 0 of the GIF at path into black line art with alpha
// taken from inverted luminance.
func ExtractArt(path string) (*image.NRGBA, error) {
	anim, err := frames.Extract(path)
	if err != nil {
		return nil, err
	}
	return frames.Outline(frames.Grayscale(anim.Frames[0])), nil
}

// Gradient paints a size×size diagonal gradient from top (top-left) to bottom
// (bottom-right). Channels truncate toward zero.
func Gradient(size int, top, bottom color.RGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	maxDist := 2.0 * float64(size-1)
	if maxDist <= 0 {
		maxDist = 1
	}
	lerp := func(a, b uint8, t float64) uint8 {
		return uint8(int(float64(a) + (float64(b)-float64(a))*t))
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t := float64(x+y) / maxDist
			img.SetNRGBA(x, y, color.NRGBA{
				R: lerp(top.R, bottom.R, t),
				G: lerp(top.G, bottom.G, t),
				B: lerp(top.B, bottom.B, t),
				A: 255,
			})
		}
	}
	return img
}

// SquircleMask returns a canvas×canvas coverage mask (255 inside) of a
// superellipse with the given body diameter and exponent, rasterised at
// supersample resolution and downsampled with Lanczos3.
func SquircleMask(canvas, body int, exponent float64, supersample int) *image.Gray {
	if supersample < 1 {
		supersample = 1
	}
	renderSize := canvas * supersample
	radius := float64(body*supersample) / 2
	centre := float64(renderSize) / 2

	raster := vector.NewRasterizer(renderSize, renderSize)
	for i := 0; i < squirclePoints; i++ {
		theta := 2 * math.Pi * float64(i) / squirclePoints
		x := centre + radius*superellipse(math.Cos(theta), exponent)
		y := centre + radius*superellipse(math.Sin(theta), exponent)
		if i == 0 {
			raster.MoveTo(float32(x), float32(y))
			continue
		}
		raster.LineTo(float32(x), float32(y))
	}
	raster.ClosePath()

	big := image.NewAlpha(image.Rect(0, 0, renderSize, renderSize))
	raster.Draw(big, big.Bounds(), image.Opaque, image.Point{})

	gray := &image.Gray{Pix: big.Pix, Stride: big.Stride, Rect: big.Rect}
	if supersample == 1 {
		return gray
	}
	scaled := resize.Resize(uint(canvas), uint(canvas), gray, resize.Lanczos3)
	if out, ok := scaled.(*image.Gray); ok {
		return out
	}
	return frames.Grayscale(scaled)
}

func superellipse(v, exponent float64) float64 {
	mag := math.Pow(math.Abs(v), 2/exponent)
	if v < 0 {
		return -mag
	}
	return mag
}

// BuildMaster composes the full-size icon from the line art.
func BuildMaster(g Geometry, art image.Image) *image.RGBA {
	background := Gradient(g.Canvas, g.Top, g.Bottom)
	mask := SquircleMask(g.Canvas, g.Body, g.Exponent, g.Supersample)
	for y := 0; y < g.Canvas; y++ {
		row := background.Pix[y*background.Stride:]
		for x := 0; x < g.Canvas; x++ {
			row[x*4+3] = mask.GrayAt(mask.Rect.Min.X+x, mask.Rect.Min.Y+y).Y
		}
	}

	master := image.NewRGBA(background.Bounds())
	draw.Draw(master, master.Bounds(), background, image.Point{}, draw.Src)

	target := g.ArtSize()
	if art == nil || target <= 0 {
		return master
	}
	scaled := resize.Resize(uint(target), uint(target), art, resize.Lanczos3)
	offset := g.ArtOffset()
	dst := image.Rect(offset, offset, offset+target, offset+target)
	draw.Draw(master, dst, scaled, scaled.Bounds().Min, draw.Over)
	return master
}

// Scale resizes the master to px×px.
func Scale(master *image.RGBA, px int) image.Image {
	if master.Bounds().Dx() == px && master.Bounds().Dy() == px {
		return master
	}
	return resize.Resize(uint(px), uint(px), master, resize.Lanczos3)
}
