package image

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/jmylchreest/swatch/internal/cluster"
)

// Resize scales img to exactly width x height using a bicubic filter.
// A 0x0 target, or a target equal to the current size, returns img unchanged.
func Resize(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.CatmullRom)
}

// ToPoints converts the pixels of img into RGB points in raster order.
// Alpha is discarded without premultiplication. When maxSamples is positive
// and the image has more pixels, a regular grid of at most maxSamples pixels
// spanning the whole image is used instead.
func ToPoints(img image.Image, maxSamples int) []cluster.Point {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	step := 1
	if maxSamples > 0 && w*h > maxSamples {
		step = max(int(math.Ceil(math.Sqrt(float64(w*h)/float64(maxSamples)))), 1)
		for gridCells(w, h, step) > maxSamples {
			step++
		}
	}

	points := make([]cluster.Point, 0, gridCells(w, h, step))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			points = append(points, pixelPoint(img, x, y))
		}
	}
	return points
}

// gridCells is the number of pixels visited by a grid with the given step.
func gridCells(w, h, step int) int {
	return ((w + step - 1) / step) * ((h + step - 1) / step)
}

func pixelPoint(img image.Image, x, y int) cluster.Point {
	if n, ok := img.(*image.NRGBA); ok {
		i := n.PixOffset(x, y)
		return cluster.Point{float64(n.Pix[i]), float64(n.Pix[i+1]), float64(n.Pix[i+2])}
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return cluster.Point{float64(c.R), float64(c.G), float64(c.B)}
}
