// Package ico describes the Windows ICO file format and the RT_GROUP_ICON
// resource layout it is packed into inside PE modules.
package ico

// http://msdn.microsoft.com/en-us/library/ms997538.aspx
// on storing icons, see: http://blogs.msdn.com/b/oldnewthing/archive/2012/07/20/10331787.aspx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dentalwings/folderstyle/binutil"
)

var (
	ErrBadMagic = errors.New("ico: bad magic number")
	ErrNoImages = errors.New("ico: directory declares no images")
)

type ICONDIR struct {
	Reserved uint16 // must be 0
	Type     uint16 // Resource Type (1 for icons)
	Count    uint16 // How many images?
}

// IconDirEntryCommon is the part of a directory entry shared by .ico files
// and RT_GROUP_ICON resources.
type IconDirEntryCommon struct {
	Width      byte   // Width, in pixels, of the image (0 means 256)
	Height     byte   // Height, in pixels, of the image (0 means 256)
	ColorCount byte   // Number of colors in image (0 if >=8bpp)
	Reserved   byte   // Reserved (must be 0)
	Planes     uint16 // Color Planes
	BitCount   uint16 // Bits per pixel
	BytesInRes uint32 // How many bytes in this resource?
}

// Size returns the pixel dimensions, mapping the 0 byte to 256.
func (e IconDirEntryCommon) Size() (w, h int) {
	w, h = int(e.Width), int(e.Height)
	if w == 0 {
		w = 256
	}
	if h == 0 {
		h = 256
	}
	return w, h
}

type ICONDIRENTRY struct {
	IconDirEntryCommon
	ImageOffset uint32 // Where in the file is this image? [from beginning of file]
}

type GRPICONDIR struct {
	ICONDIR
	Entries []GRPICONDIRENTRY
}

type GRPICONDIRENTRY struct {
	IconDirEntryCommon
	ID uint16 // RT_ICON resource ID
}

type BITMAPINFOHEADER struct {
	Size          uint32
	Width         int32
	Height        int32 // NOTE: "represents the combined height of the XOR and AND masks. Remember to divide this number by two before using it to perform calculations for either of the XOR or AND masks."
	Planes        uint16
	BitCount      uint16
	Compression   uint32 // for ico = 0
	SizeImage     uint32
	XPelsPerMeter int32  // for ico = 0
	YPelsPerMeter int32  // for ico = 0
	ClrUsed       uint32 // for ico = 0
	ClrImportant  uint32 // for ico = 0
}

var (
	headerSize     = binary.Size(ICONDIR{})
	fileEntrySize  = binary.Size(ICONDIRENTRY{})
	groupEntrySize = binary.Size(GRPICONDIRENTRY{})
)

func readDir(r io.Reader) (ICONDIR, error) {
	var hdr ICONDIR
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return hdr, err
	}
	if hdr.Reserved != 0 || hdr.Type != 1 {
		return hdr, ErrBadMagic
	}
	if hdr.Count == 0 {
		return hdr, ErrNoImages
	}
	return hdr, nil
}

// DecodeHeaders reads the directory of an .ico file.
func DecodeHeaders(r io.Reader) ([]ICONDIRENTRY, error) {
	hdr, err := readDir(r)
	if err != nil {
		return nil, err
	}
	entries := make([]ICONDIRENTRY, hdr.Count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DecodeGroup parses the raw bytes of an RT_GROUP_ICON resource. The group
// must declare the icon type and at least one entry.
func DecodeGroup(data []byte) (*GRPICONDIR, error) {
	r := bytes.NewReader(data)
	hdr, err := readDir(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize+int(hdr.Count)*groupEntrySize {
		return nil, fmt.Errorf("ico: group directory truncated: %d entries in %d bytes", hdr.Count, len(data))
	}
	group := &GRPICONDIR{ICONDIR: hdr, Entries: make([]GRPICONDIRENTRY, hdr.Count)}
	if err := binary.Read(r, binary.LittleEndian, group.Entries); err != nil {
		return nil, err
	}
	return group, nil
}

// Image is one size/depth variant together with its raw payload (a DIB
// without file header, or a PNG stream).
type Image struct {
	IconDirEntryCommon
	Data []byte
}

// Assemble builds a standalone .ico file. The directory slots are reserved
// up front and each one is backfilled right after its image is appended, so
// every ImageOffset points into the new file. BytesInRes is taken from the
// payload actually written.
func Assemble(images []Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if len(images) > math.MaxUint16 {
		return nil, fmt.Errorf("ico: too many images: %d", len(images))
	}
	var buf binutil.Buffer
	w := binutil.Writer{W: &buf}
	w.WriteLE(ICONDIR{Reserved: 0, Type: 1, Count: uint16(len(images))})
	dir := w.Reserve(len(images) * fileEntrySize)
	for i, img := range images {
		entry := ICONDIRENTRY{
			IconDirEntryCommon: img.IconDirEntryCommon,
			ImageOffset:        w.Offset,
		}
		entry.Reserved = 0
		entry.BytesInRes = uint32(len(img.Data))
		w.WriteBytes(img.Data)
		w.WriteLEAt(dir+uint32(i*fileEntrySize), entry)
	}
	if w.Err != nil {
		return nil, fmt.Errorf("ico: assembling: %w", w.Err)
	}
	return buf.Bytes(), nil
}

// Split parses a complete .ico file held in memory into its images.
func Split(data []byte) ([]Image, error) {
	entries, err := DecodeHeaders(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	images := make([]Image, len(entries))
	for i, e := range entries {
		end := uint64(e.ImageOffset) + uint64(e.BytesInRes)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("ico: image %d out of bounds: %d+%d > %d", i, e.ImageOffset, e.BytesInRes, len(data))
		}
		images[i] = Image{IconDirEntryCommon: e.IconDirEntryCommon, Data: data[e.ImageOffset:end]}
	}
	return images, nil
}
