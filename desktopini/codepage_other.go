//go:build !windows

package desktopini

// Explorer's default for Western locales.
func activeCodePage() uint32 { return 1252 }
