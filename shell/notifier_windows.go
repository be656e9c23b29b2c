//go:build windows

package shell

import (
	"fmt"
	"io/fs"
	"unsafe"

	log "github.com/schollz/logger"
	"golang.org/x/sys/windows"
)

var (
	shell32                          = windows.NewLazySystemDLL("shell32.dll")
	procSHGetSetFolderCustomSettings = shell32.NewProc("SHGetSetFolderCustomSettings")
)

const (
	fcsmIconFile  = 0x00000010
	fcsForceWrite = 0x00000002
	eAccessDenied = 0x80070005
)

// SHFOLDERCUSTOMSETTINGS
type folderCustomSettings struct {
	Size                   uint32
	Mask                   uint32
	ViewID                 *windows.GUID
	WebViewTemplate        *uint16
	WebViewTemplateLen     uint32
	WebViewTemplateVersion *uint16
	InfoTip                *uint16
	InfoTipLen             uint32
	CLSID                  *windows.GUID
	Flags                  uint32
	IconFile               *uint16
	IconFileLen            uint32
	IconIndex              int32
	Logo                   *uint16
	LogoLen                uint32
}

type shellNotifier struct{}

func NewNotifier() Notifier { return shellNotifier{} }

func (shellNotifier) SetFolderIcon(folder, iconFile string, index int) error {
	return setFolderIcon(folder, iconFile, index)
}

func (shellNotifier) ClearFolderIcon(folder string) error {
	return setFolderIcon(folder, "", 0)
}

func setFolderIcon(folder, iconFile string, index int) error {
	dir, err := windows.UTF16PtrFromString(folder)
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(iconFile)
	if err != nil {
		return err
	}
	fcs := folderCustomSettings{
		Mask:      fcsmIconFile,
		IconFile:  file,
		IconIndex: int32(index),
	}
	fcs.Size = uint32(unsafe.Sizeof(fcs))
	hr, _, _ := procSHGetSetFolderCustomSettings.Call(
		uintptr(unsafe.Pointer(&fcs)),
		uintptr(unsafe.Pointer(dir)),
		fcsForceWrite,
	)
	switch uint32(hr) {
	case 0:
		log.Debugf("shell notified: %q icon %q,%d", folder, iconFile, index)
		return nil
	case eAccessDenied:
		return fmt.Errorf("SHGetSetFolderCustomSettings %s: %w", folder, fs.ErrPermission)
	}
	return fmt.Errorf("SHGetSetFolderCustomSettings %s: HRESULT 0x%08X", folder, uint32(hr))
}
