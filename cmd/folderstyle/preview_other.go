//go:build !windows

package main

import (
	"errors"
	"image"
)

func shellPreview(path string, index int) (image.Image, error) {
	return nil, errors.New("--shell previews need windows")
}
