package resource

import (
	"fmt"
	"strings"
)

// NewOpener picks a backend by name: "pe", "native" or "auto" (native where
// available, PE otherwise).
func NewOpener(name string) (Opener, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return defaultOpener(), nil
	case "pe":
		return PE, nil
	case "native":
		return nativeOpener()
	}
	return nil, fmt.Errorf("resource: unknown loader %q", name)
}
