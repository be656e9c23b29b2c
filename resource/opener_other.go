//go:build !windows

package resource

import "errors"

func nativeOpener() (Opener, error) {
	return nil, errors.New("resource: native loader is only available on windows")
}

func defaultOpener() Opener { return PE }
