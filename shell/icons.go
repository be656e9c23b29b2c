package shell

import (
	"fmt"

	"github.com/dentalwings/folderstyle/raster"
)

// IconAt returns the handle at position index of an ExtractIcons result.
func IconAt(hs []raster.Handle, index int) (raster.Handle, error) {
	if index < 0 || index >= len(hs) {
		return 0, fmt.Errorf("shell: %d icons, index %d", len(hs), index)
	}
	if hs[index] == 0 {
		return 0, fmt.Errorf("shell: icon %d could not be loaded", index)
	}
	return hs[index], nil
}
