//go:build windows

package raster

import (
	"errors"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/dentalwings/folderstyle/binutil"
)

var (
	gdi32         = windows.NewLazySystemDLL("gdi32.dll")
	procGetDIBits = gdi32.NewProc("GetDIBits")
)

// bitmapInfo leaves room for the two-entry palette GDI writes for 1bpp
// bitmaps.
type bitmapInfo struct {
	Header win.BITMAPINFOHEADER
	Colors [2]win.RGBQUAD
}

func getDIBits(dc win.HDC, bmp win.HBITMAP, lines int, bits *byte, bi *bitmapInfo) bool {
	r, _, _ := procGetDIBits.Call(
		uintptr(dc),
		uintptr(bmp),
		0,
		uintptr(lines),
		uintptr(unsafe.Pointer(bits)),
		uintptr(unsafe.Pointer(bi)),
		win.DIB_RGB_COLORS,
	)
	return r != 0
}

// query fills in the header GDI holds for bmp.
func query(dc win.HDC, bmp win.HBITMAP) (win.BITMAPINFOHEADER, bool) {
	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	ok := getDIBits(dc, bmp, 0, nil, &bi)
	return bi.Header, ok
}

// GDISource reads icon bitmaps through GetIconInfo and GetDIBits.
type GDISource struct{}

type gdiBitmaps struct {
	info          win.ICONINFO
	dc            win.HDC
	width, height int
	bitCount      int
}

func (GDISource) Bitmaps(h Handle) (Bitmaps, error) {
	b := &gdiBitmaps{}
	if !win.GetIconInfo(win.HICON(h), &b.info) {
		return nil, errors.New("GetIconInfo failed")
	}
	b.dc = win.CreateCompatibleDC(0)
	if b.dc == 0 {
		b.Close()
		return nil, errors.New("CreateCompatibleDC failed")
	}
	if b.info.HbmColor == 0 {
		// monochrome icon: the mask holds both AND and XOR halves
		if hdr, ok := query(b.dc, b.info.HbmMask); ok {
			b.width, b.height, b.bitCount = int(hdr.BiWidth), abs(int(hdr.BiHeight))/2, int(hdr.BiBitCount)
		}
		return b, nil
	}
	hdr, ok := query(b.dc, b.info.HbmColor)
	if !ok {
		b.Close()
		return nil, errors.New("GetDIBits header query failed")
	}
	b.width, b.height, b.bitCount = int(hdr.BiWidth), abs(int(hdr.BiHeight)), int(hdr.BiBitCount)
	return b, nil
}

func (b *gdiBitmaps) Size() (int, int, int) { return b.width, b.height, b.bitCount }

func (b *gdiBitmaps) Color() ([]byte, error) {
	pix := make([]byte, b.width*b.height*4)
	var bi bitmapInfo
	bi.Header = win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(bi.Header)),
		BiWidth:       int32(b.width),
		BiHeight:      -int32(b.height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	if !getDIBits(b.dc, b.info.HbmColor, b.height, &pix[0], &bi) {
		return nil, errors.New("GetDIBits failed on color bitmap")
	}
	return pix, nil
}

func (b *gdiBitmaps) Mask() (*Mask, error) {
	if b.info.HbmMask == 0 {
		return nil, nil
	}
	hdr, ok := query(b.dc, b.info.HbmMask)
	if !ok {
		return nil, errors.New("GetDIBits header query failed on mask")
	}
	m := &Mask{Width: int(hdr.BiWidth), Height: abs(int(hdr.BiHeight))}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, nil
	}
	m.Bits = make([]byte, binutil.Stride(m.Width, 1)*m.Height)
	var bi bitmapInfo
	bi.Header = win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(bi.Header)),
		BiWidth:       int32(m.Width),
		BiHeight:      -int32(m.Height),
		BiPlanes:      1,
		BiBitCount:    1,
		BiCompression: win.BI_RGB,
	}
	if !getDIBits(b.dc, b.info.HbmMask, m.Height, &m.Bits[0], &bi) {
		return nil, errors.New("GetDIBits failed on mask")
	}
	return m, nil
}

func (b *gdiBitmaps) Close() error {
	if b.dc != 0 {
		win.DeleteDC(b.dc)
	}
	if b.info.HbmColor != 0 {
		win.DeleteObject(win.HGDIOBJ(b.info.HbmColor))
	}
	if b.info.HbmMask != 0 {
		win.DeleteObject(win.HGDIOBJ(b.info.HbmMask))
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
