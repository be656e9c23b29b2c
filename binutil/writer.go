package binutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var pad [16]byte

// Writer accumulates little-endian output. The first error sticks; later
// calls become no-ops and the caller checks Err once at the end.
type Writer struct {
	W      io.Writer
	Offset uint32 //FIXME: int64?
	Err    error
}

func (w *Writer) WriteLE(v interface{}) {
	if w.Err != nil {
		return
	}
	w.Err = binary.Write(w.W, binary.LittleEndian, v)
	if w.Err != nil {
		return
	}
	w.Offset += uint32(binary.Size(v))
}

func (w *Writer) WriteBytes(p []byte) {
	if w.Err != nil {
		return
	}
	var n int
	n, w.Err = w.W.Write(p)
	w.Offset += uint32(n)
}

// Reserve writes n zero bytes and returns the offset where they start, so
// the slot can be filled later with WriteLEAt.
func (w *Writer) Reserve(n int) uint32 {
	at := w.Offset
	for n > 0 && w.Err == nil {
		chunk := n
		if chunk > len(pad) {
			chunk = len(pad)
		}
		w.WriteBytes(pad[:chunk])
		n -= chunk
	}
	return at
}

// WriteLEAt overwrites already written bytes at off. The underlying writer
// must implement io.WriterAt. Offset is not advanced.
func (w *Writer) WriteLEAt(off uint32, v interface{}) {
	if w.Err != nil {
		return
	}
	wa, ok := w.W.(io.WriterAt)
	if !ok {
		w.Err = errors.New("binutil: writer does not support WriteAt")
		return
	}
	var b bytes.Buffer
	w.Err = binary.Write(&b, binary.LittleEndian, v)
	if w.Err != nil {
		return
	}
	_, w.Err = wa.WriteAt(b.Bytes(), int64(off))
}

// Buffer is an in-memory io.Writer that also supports WriteAt within the
// bytes written so far.
type Buffer struct {
	b []byte
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(b.b)) {
		return 0, io.ErrShortWrite
	}
	return copy(b.b[off:], p), nil
}

func (b *Buffer) Bytes() []byte { return b.b }

func (b *Buffer) Len() int { return len(b.b) }
