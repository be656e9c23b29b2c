package binutil

// Align rounds s up to a multiple of to, which must be a power of two.
func Align(s, to int) int {
	return (s + to - 1) &^ (to - 1)
}

// Stride is the length in bytes of one DIB scan line: rows are padded to a
// 32-bit boundary.
func Stride(width, bitCount int) int {
	return Align(width*bitCount, 32) / 8
}
