//go:build windows

package shell

import (
	"golang.org/x/sys/windows"
)

func updateAttrs(path string, set, clear uint32) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	existing, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	attrs := existing&^clear | set
	if attrs == existing {
		return nil
	}
	return windows.SetFileAttributes(p, attrs)
}

// Hide marks path hidden and system, the way Explorer expects desktop.ini
// and the icon cache directory.
func Hide(path string) error {
	return updateAttrs(path, windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM, 0)
}

// Unhide clears the attributes that make CreateFile(CREATE_ALWAYS) fail on
// an existing desktop.ini.
func Unhide(path string) error {
	return updateAttrs(path, 0, windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM|windows.FILE_ATTRIBUTE_READONLY)
}

// MarkFolder sets the read-only bit Explorer uses to look for desktop.ini.
func MarkFolder(dir string) error {
	return updateAttrs(dir, windows.FILE_ATTRIBUTE_READONLY, 0)
}

func UnmarkFolder(dir string) error {
	return updateAttrs(dir, 0, windows.FILE_ATTRIBUTE_READONLY)
}
