//go:build windows

package resource

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procEnumResourceNamesW = kernel32.NewProc("EnumResourceNamesW")
)

// Native maps modules with LoadLibraryEx(LOAD_LIBRARY_AS_DATAFILE) and reads
// resources through the loader.
var Native Opener = OpenerFunc(openNative)

type nativeModule struct {
	h windows.Handle
}

func openNative(path string) (Module, error) {
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_LIBRARY_AS_DATAFILE)
	if err != nil {
		return nil, fmt.Errorf("resource: LoadLibraryEx %s: %w", path, err)
	}
	return &nativeModule{h: h}, nil
}

func (m *nativeModule) Close() error {
	return windows.FreeLibrary(m.h)
}

// Callbacks created with NewCallback are never released, so a single one
// serves every enumeration and dispatches on the lParam token.
var (
	enumMu     sync.Mutex
	enumNext   uintptr
	enumSinks  = map[uintptr]*[]GroupID{}
	enumNameCb = windows.NewCallback(func(module, typ, name, param uintptr) uintptr {
		enumMu.Lock()
		sink := enumSinks[param]
		enumMu.Unlock()
		if sink == nil {
			return 0
		}
		if name>>16 == 0 {
			*sink = append(*sink, GroupID{ID: uint16(name)})
		} else {
			*sink = append(*sink, GroupID{Name: windows.UTF16PtrToString((*uint16)(unsafe.Pointer(name)))})
		}
		return 1
	})
)

func (m *nativeModule) IconGroups() ([]GroupID, error) {
	var groups []GroupID
	enumMu.Lock()
	enumNext++
	token := enumNext
	enumSinks[token] = &groups
	enumMu.Unlock()
	defer func() {
		enumMu.Lock()
		delete(enumSinks, token)
		enumMu.Unlock()
	}()

	r, _, err := procEnumResourceNamesW.Call(uintptr(m.h), uintptr(windows.RT_GROUP_ICON), enumNameCb, token)
	if r == 0 && err != windows.ERROR_RESOURCE_TYPE_NOT_FOUND && len(groups) == 0 {
		return nil, fmt.Errorf("resource: EnumResourceNames: %w", err)
	}
	return groups, nil
}

func (m *nativeModule) load(name windows.ResourceIDOrString, typ windows.ResourceIDOrString) ([]byte, error) {
	info, err := windows.FindResource(m.h, name, typ)
	if err != nil {
		return nil, err
	}
	data, err := windows.LoadResourceData(m.h, info)
	if err != nil {
		return nil, err
	}
	// data aliases the mapped image, which goes away with FreeLibrary
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *nativeModule) GroupData(id GroupID) ([]byte, error) {
	var name windows.ResourceIDOrString = windows.ResourceID(id.ID)
	if id.IsNamed() {
		name = id.Name
	}
	return m.load(name, windows.RT_GROUP_ICON)
}

func (m *nativeModule) IconData(id uint16) ([]byte, error) {
	return m.load(windows.ResourceID(id), windows.RT_ICON)
}
