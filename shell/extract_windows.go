//go:build windows

package shell

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/dentalwings/folderstyle/raster"
)

var procExtractIconExW = shell32.NewProc("ExtractIconExW")

// IconCount reports how many icons ExtractIconEx sees in path.
func IconCount(path string) int {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0
	}
	n, _, _ := procExtractIconExW.Call(uintptr(unsafe.Pointer(p)), ^uintptr(0), 0, 0, 0)
	return int(n)
}

// ExtractIcons returns the large icon handles of every icon in path, in
// icon order. An icon the shell could not load keeps its position as a zero
// handle. The caller owns the handles and releases them with DestroyIcons.
func ExtractIcons(path string) ([]raster.Handle, error) {
	n := IconCount(path)
	if n == 0 {
		return nil, fmt.Errorf("shell: no icons in %s", path)
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	large := make([]raster.Handle, n)
	got, _, _ := procExtractIconExW.Call(
		uintptr(unsafe.Pointer(p)),
		0,
		uintptr(unsafe.Pointer(&large[0])),
		0,
		uintptr(n),
	)
	if got == 0 {
		return nil, fmt.Errorf("shell: ExtractIconEx failed for %s", path)
	}
	return large[:min(int(got), n)], nil
}

func DestroyIcons(hs []raster.Handle) {
	for _, h := range hs {
		if h != 0 {
			win.DestroyIcon(win.HICON(h))
		}
	}
}
