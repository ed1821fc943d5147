package assets

import (
	"image"

	"golang.org/x/image/draw"
)

// Resample scales img to a size by size RGBA image with Catmull-Rom filtering. A size of 0
// keeps the original dimensions and only converts to RGBA.
//
// Parameters:
//   - img: the source image
//   - size: the edge of the square result in pixels
//
// Returns:
//   - *image.RGBA: the resampled image with a tight stride
func Resample(img image.Image, size uint32) *image.RGBA {
	src := img.Bounds()
	if size == 0 {
		dst := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
		return dst
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(size), int(size)))
	if src.Dx() == int(size) && src.Dy() == int(size) {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
