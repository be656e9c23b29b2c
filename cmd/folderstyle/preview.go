package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/cli/v2"
	log "github.com/schollz/logger"
	goico "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/bmp"

	"github.com/dentalwings/folderstyle/iconpath"
	"github.com/dentalwings/folderstyle/raster"
	"github.com/dentalwings/folderstyle/resource"
)

func (e *env) preview(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	size := e.cfg.PreviewSize
	if c.IsSet("size") {
		size = c.Int("size")
	}
	path, index := iconpath.Split(c.Args().First())

	var (
		img image.Image
		err error
	)
	if c.Bool("shell") {
		img, err = shellPreview(path, index)
	} else {
		img, err = decodePreview(e.reader, path, index)
	}
	if err != nil {
		return err
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, raster.Thumbnail(img, size)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Printf("wrote %s from %dx%d source\n", out, b.Dx(), b.Dy())
	return nil
}

// decodePreview decodes an image file, or rebuilds a module's icon group
// and decodes that.
func decodePreview(r *resource.Reader, path string, index int) (image.Image, error) {
	if iconpath.IsModule(path) {
		data, err := r.ExtractIconGroup(path, index)
		if err != nil {
			return nil, err
		}
		img, err := goico.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding icon group %d of %s: %w", index, path, err)
		}
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".ico") {
		img, err := goico.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	log.Debugf("decoded %s as %s", path, format)
	return img, nil
}
