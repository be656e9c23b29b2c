//go:build !windows

package shell

// File attributes only exist on windows; elsewhere these are no-ops so the
// rest of the code can be exercised.

func Hide(path string) error { return nil }

func Unhide(path string) error { return nil }

func MarkFolder(dir string) error { return nil }

func UnmarkFolder(dir string) error { return nil }
