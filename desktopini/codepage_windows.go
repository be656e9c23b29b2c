package desktopini

import "golang.org/x/sys/windows"

var procGetACP = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetACP")

func activeCodePage() uint32 {
	cp, _, _ := procGetACP.Call()
	return uint32(cp)
}
