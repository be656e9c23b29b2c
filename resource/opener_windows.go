//go:build windows

package resource

func nativeOpener() (Opener, error) { return Native, nil }

func defaultOpener() Opener { return Native }
