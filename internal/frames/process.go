package frames

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Grayscale converts img to 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// ResizeGray scales gray to a size×size square with Lanczos3 resampling.
func ResizeGray(gray *image.Gray, size int) *image.Gray {
	if size <= 0 {
		return gray
	}
	b := gray.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return gray
	}
	scaled := resize.Resize(uint(size), uint(size), gray, resize.Lanczos3)
	if out, ok := scaled.(*image.Gray); ok {
		return out
	}
	return Grayscale(scaled)
}

// Outline maps luminance to black line art: dark pixels become opaque,
// white becomes fully transparent.
func Outline(gray *image.Gray) *image.NRGBA {
	bounds := gray.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetNRGBA(x, y, color.NRGBA{A: 255 - gray.GrayAt(x, y).Y})
		}
	}
	return out
}

// ProcessOutline produces an outline-mode frame. The resize happens on the
// grayscale image before the alpha conversion.
func ProcessOutline(img image.Image, size int) *image.NRGBA {
	return Outline(ResizeGray(Grayscale(img), size))
}

// ProcessTemplate produces a grayscale template-mode frame.
func ProcessTemplate(img image.Image, size int) *image.Gray {
	return ResizeGray(Grayscale(img), size)
}
