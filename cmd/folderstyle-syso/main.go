// Command folderstyle-syso writes the version and icon resource object that
// gets linked into folderstyle.exe.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/josephspurrier/goversioninfo"
	log "github.com/schollz/logger"

	"github.com/dentalwings/folderstyle/iconpath"
	"github.com/dentalwings/folderstyle/resource"
)

var usage = `USAGE:

%s -ico FILE.ico|MODULE.exe[,INDEX] [-version 1.2.3] -o FILE.syso
  Generates a .syso file with version information and an icon embedded in
  its .rsrc section, for the Go linker to pick up when building
  folderstyle.exe. The icon may be taken straight from an icon group of
  another module.

OPTIONS:
`

func main() {
	var icon, manifest, out, arch, version, product string
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.StringVar(&icon, "ico", "", "path to an .ico file, or MODULE,INDEX to take an icon group from a module")
	flags.StringVar(&manifest, "manifest", "", "path to a Windows manifest file to embed")
	flags.StringVar(&out, "o", "rsrc_windows_amd64.syso", "name of output COFF (.syso) file")
	flags.StringVar(&arch, "arch", "amd64", "architecture of output file - one of: 386, amd64, arm, arm64")
	flags.StringVar(&version, "version", "0.1.0", "file and product version, MAJOR.MINOR.PATCH")
	flags.StringVar(&product, "product", "folderstyle", "product name")
	_ = flags.Parse(os.Args[1:])
	if out == "" || icon == "" {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		flags.PrintDefaults()
		os.Exit(1)
	}

	if err := run(icon, manifest, out, arch, version, product); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(icon, manifest, out, arch, version, product string) error {
	iconFile, cleanup, err := iconSource(icon)
	if err != nil {
		return err
	}
	defer cleanup()

	fv, err := parseVersion(version)
	if err != nil {
		return err
	}
	vi := &goversioninfo.VersionInfo{}
	vi.IconPath = iconFile
	vi.ManifestPath = manifest
	vi.FixedFileInfo.FileVersion = fv
	vi.FixedFileInfo.ProductVersion = fv
	vi.FixedFileInfo.FileFlagsMask = "3f"
	vi.FixedFileInfo.FileOS = "040004"
	vi.FixedFileInfo.FileType = "01"
	vi.StringFileInfo.ProductName = product
	vi.StringFileInfo.FileDescription = "Folder icon and alias editor"
	vi.StringFileInfo.OriginalFilename = product + ".exe"
	vi.StringFileInfo.InternalName = product
	vi.StringFileInfo.FileVersion = version
	vi.StringFileInfo.ProductVersion = version
	vi.VarFileInfo.Translation.LangID = 0x0409    // en-US
	vi.VarFileInfo.Translation.CharsetID = 0x04b0 // Unicode

	vi.Build()
	vi.Walk()
	if err := vi.WriteSyso(out, arch); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Println("Icon ", icon, " written to ", out)
	return nil
}

// iconSource returns an .ico path for src. A module reference is rebuilt
// into a temporary .ico first.
func iconSource(src string) (string, func(), error) {
	path, index := iconpath.Split(src)
	if !iconpath.IsModule(path) {
		return path, func() {}, nil
	}
	data, err := resource.NewReader(resource.PE).ExtractIconGroup(path, index)
	if err != nil {
		return "", nil, err
	}
	f, err := os.CreateTemp("", strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"_*.ico")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(f.Name()) }
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, err
	}
	log.Debugf("extracted %s,%d to %s", path, index, f.Name())
	return f.Name(), cleanup, nil
}

func parseVersion(s string) (goversioninfo.FileVersion, error) {
	var fv goversioninfo.FileVersion
	parts := strings.Split(strings.TrimPrefix(s, "v"), ".")
	if len(parts) > 4 {
		return fv, fmt.Errorf("bad version %q", s)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return fv, fmt.Errorf("bad version %q", s)
		}
		nums[i] = n
	}
	fv.Major, fv.Minor, fv.Patch, fv.Build = nums[0], nums[1], nums[2], nums[3]
	return fv, nil
}
