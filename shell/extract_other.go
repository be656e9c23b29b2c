//go:build !windows

package shell

import (
	"errors"

	"github.com/dentalwings/folderstyle/raster"
)

var errNoShell = errors.New("shell: icon handles are only available on windows")

func IconCount(path string) int { return 0 }

func ExtractIcons(path string) ([]raster.Handle, error) { return nil, errNoShell }

func DestroyIcons(hs []raster.Handle) {}
