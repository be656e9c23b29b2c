package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Buffer holds top-down BGRA pixels with premultiplied alpha.
type Buffer struct {
	Width, Height int
	Pix           []byte
}

// RGBA converts the buffer to an image.RGBA, which is premultiplied as well,
// so only the channel order changes.
func (b *Buffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i := 0; i+3 < len(b.Pix) && i+3 < len(img.Pix); i += 4 {
		img.Pix[i+0] = b.Pix[i+2]
		img.Pix[i+1] = b.Pix[i+1]
		img.Pix[i+2] = b.Pix[i+0]
		img.Pix[i+3] = b.Pix[i+3]
	}
	return img
}

// Thumbnail scales the buffer to fit a size x size square, keeping the
// aspect ratio.
func (b *Buffer) Thumbnail(size int) *image.RGBA {
	return Thumbnail(b.RGBA(), size)
}

// Thumbnail scales src to fit a size x size square, keeping the aspect
// ratio. Images already small enough are copied unscaled.
func Thumbnail(src image.Image, size int) *image.RGBA {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if size > 0 && (w > size || h > size) {
		if w >= h {
			w, h = size, max(1, h*size/w)
		} else {
			w, h = max(1, w*size/h), size
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}
