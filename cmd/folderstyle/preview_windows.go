//go:build windows

package main

import (
	"fmt"
	"image"

	"github.com/dentalwings/folderstyle/raster"
	"github.com/dentalwings/folderstyle/shell"
)

// shellPreview renders the index-th icon the shell extracts from path.
func shellPreview(path string, index int) (image.Image, error) {
	hs, err := shell.ExtractIcons(path)
	if err != nil {
		return nil, err
	}
	defer shell.DestroyIcons(hs)
	h, err := shell.IconAt(hs, index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	buf, err := raster.NewRasterizer(raster.GDISource{}).Rasterize(h)
	if err != nil {
		return nil, err
	}
	return buf.RGBA(), nil
}
