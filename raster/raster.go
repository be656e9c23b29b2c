// Package raster turns live icon handles into premultiplied BGRA pixels.
package raster

import (
	"errors"
	"fmt"

	log "github.com/schollz/logger"

	"github.com/dentalwings/folderstyle/binutil"
)

var (
	ErrNullHandle        = errors.New("raster: null icon handle")
	ErrEmptyBitmap       = errors.New("raster: icon bitmap has no pixels")
	ErrUnsupportedFormat = errors.New("raster: unsupported bitmap format")
)

// Handle is an icon handle (HICON). Rasterize borrows it and never
// destroys it.
type Handle uintptr

// Mask is a 1bpp AND mask, top-down, rows padded to 4 bytes, most
// significant bit first. A set bit marks a transparent pixel.
type Mask struct {
	Width, Height int
	Bits          []byte
}

func (m *Mask) transparent(x, y int) bool {
	b := m.Bits[y*binutil.Stride(m.Width, 1)+x/8]
	return b&(0x80>>(x%8)) != 0
}

// Bitmaps gives access to the color and mask bitmaps behind a handle.
type Bitmaps interface {
	Size() (width, height, bitCount int)
	// Color returns width*height top-down BGRA pixels.
	Color() ([]byte, error)
	// Mask returns the AND mask, or nil when the icon has none.
	Mask() (*Mask, error)
	Close() error
}

// Source acquires the bitmaps of an icon handle.
type Source interface {
	Bitmaps(h Handle) (Bitmaps, error)
}

type Rasterizer struct {
	src Source
}

func NewRasterizer(src Source) *Rasterizer {
	return &Rasterizer{src: src}
}

// Rasterize reads the icon behind h into a premultiplied BGRA buffer. When
// the color bitmap carries no alpha at all, transparency is taken from the
// AND mask instead.
func (r *Rasterizer) Rasterize(h Handle) (*Buffer, error) {
	if h == 0 {
		return nil, ErrNullHandle
	}
	bm, err := r.src.Bitmaps(h)
	if err != nil {
		return nil, fmt.Errorf("raster: acquiring bitmaps: %w", err)
	}
	defer bm.Close()

	w, ht, bpp := bm.Size()
	if w <= 0 || ht <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBitmap, w, ht)
	}
	if bpp != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, bpp)
	}
	pix, err := bm.Color()
	if err != nil {
		return nil, fmt.Errorf("raster: reading color bitmap: %w", err)
	}
	if len(pix) < w*ht*4 {
		return nil, fmt.Errorf("raster: color bitmap short: %d bytes for %dx%d", len(pix), w, ht)
	}
	pix = pix[:w*ht*4]

	if alphaEmpty(pix) {
		m, err := bm.Mask()
		switch {
		case err != nil:
			log.Debugf("reading icon mask: %v", err)
		case m == nil:
		case m.Width != w || m.Height < ht || len(m.Bits) < binutil.Stride(w, 1)*ht:
			log.Debugf("icon mask %dx%d does not cover %dx%d", m.Width, m.Height, w, ht)
		default:
			applyMask(pix, w, ht, m)
		}
	}
	premultiply(pix)
	return &Buffer{Width: w, Height: ht, Pix: pix}, nil
}

func alphaEmpty(pix []byte) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return false
		}
	}
	return true
}

func applyMask(pix []byte, w, h int, m *Mask) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := byte(255)
			if m.transparent(x, y) {
				a = 0
			}
			pix[(y*w+x)*4+3] = a
		}
	}
}

func premultiply(pix []byte) {
	for i := 0; i < len(pix); i += 4 {
		a := uint32(pix[i+3])
		switch a {
		case 255:
		case 0:
			pix[i], pix[i+1], pix[i+2] = 0, 0, 0
		default:
			for c := i; c < i+3; c++ {
				pix[c] = byte((uint32(pix[c])*a + 127) / 255)
			}
		}
	}
}
