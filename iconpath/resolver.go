// Package iconpath turns a chosen icon source into the desktop.ini
// reference that keeps working when the folder is moved.
package iconpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/schollz/logger"

	"github.com/dentalwings/folderstyle/resource"
	"github.com/dentalwings/folderstyle/shell"
)

var (
	// ErrInvalidSelection is returned when the chosen group index does not
	// exist in the source module.
	ErrInvalidSelection = errors.New("iconpath: icon index out of range")
	// ErrUnsupportedSource is returned for files that are neither images
	// nor modules carrying icon resources.
	ErrUnsupportedSource = errors.New("iconpath: unsupported icon source")
)

// SystemRootVar is the only placeholder written to or read from desktop.ini.
const SystemRootVar = "%SystemRoot%"

const DefaultCacheDir = ".ICON"

// Groups is the part of resource.Reader the resolver needs.
type Groups interface {
	ListIconGroups(path string) []resource.GroupID
	ExtractIconGroup(path string, index int) ([]byte, error)
}

type Options struct {
	WindowsDir   string // e.g. C:\Windows
	SystemDir    string // defaults to WindowsDir\System32
	CacheDirName string // defaults to .ICON
}

type Resolver struct {
	groups Groups
	opts   Options
}

func NewResolver(g Groups, opts Options) *Resolver {
	opts.WindowsDir = filepath.Clean(opts.WindowsDir)
	if opts.SystemDir == "" {
		opts.SystemDir = filepath.Join(opts.WindowsDir, "System32")
	}
	opts.SystemDir = filepath.Clean(opts.SystemDir)
	if opts.CacheDirName == "" {
		opts.CacheDirName = DefaultCacheDir
	}
	return &Resolver{groups: g, opts: opts}
}

// Split separates "path,index". The index is only taken when the text after
// the last comma is an integer; anything else belongs to the path.
func Split(raw string) (path string, index int) {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndexByte(raw, ','); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(raw[i+1:])); err == nil {
			return strings.Trim(strings.TrimSpace(raw[:i]), `"`), n
		}
	}
	return strings.Trim(raw, `"`), 0
}

// Expand replaces a leading %SystemRoot% with the configured Windows
// directory.
func (r *Resolver) Expand(path string) string {
	if hasPrefixFold(path, SystemRootVar) {
		return r.opts.WindowsDir + path[len(SystemRootVar):]
	}
	return path
}

// Resolve classifies raw ("path[,index]") relative to folder and returns
// the reference to persist. Cached copies are written under the folder's
// cache directory; nothing is created when validation or extraction fails.
func (r *Resolver) Resolve(folder, raw string) (Reference, error) {
	if strings.TrimSpace(raw) == "" {
		return Reference{}, nil
	}
	folder = filepath.Clean(folder)
	path, index := Split(raw)
	path = r.Expand(path)

	if !filepath.IsAbs(path) {
		return Reference{Kind: Unchanged, Path: raw}, nil
	}
	path = filepath.Clean(path)

	if rel, ok := under(path, folder); ok {
		return Reference{Kind: Relative, Path: rel, Index: index}, nil
	}

	if r.isSystem(path) && isModule(path) {
		ref, ok, err := r.system(path, index)
		if err != nil || ok {
			return ref, err
		}
		log.Debugf("%s group %d has a string name, caching a copy", path, index)
	}
	return r.cache(folder, path, index)
}

func (r *Resolver) systemDirs() []string {
	return []string{
		r.opts.SystemDir,
		filepath.Join(r.opts.WindowsDir, "SysWOW64"),
		filepath.Join(r.opts.WindowsDir, "System"),
	}
}

func (r *Resolver) isSystem(path string) bool {
	for _, d := range r.systemDirs() {
		if _, ok := under(path, d); ok {
			return true
		}
	}
	return false
}

// system references a module in a Windows system directory by resource ID
// through %SystemRoot%. ok is false when the group has no numeric ID.
func (r *Resolver) system(path string, index int) (Reference, bool, error) {
	_, g, err := r.group(path, index)
	if err != nil {
		return Reference{}, false, err
	}
	if g.IsNamed() {
		return Reference{}, false, nil
	}
	id := -int(g.ID)

	if rel, ok := under(path, filepath.Join(r.opts.WindowsDir, "SysWOW64")); ok {
		path = filepath.Join(r.opts.SystemDir, rel)
	}
	if rel, ok := under(path, r.opts.WindowsDir); ok {
		path = SystemRootVar + string(filepath.Separator) + rel
	}
	return Reference{Kind: SystemSymbolic, Path: path, Index: id}, true, nil
}

// cache copies or extracts the icon into <folder>\<cache dir>.
func (r *Resolver) cache(folder, path string, index int) (Reference, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_" + strconv.Itoa(index) + ".ico"
	rel := filepath.Join(r.opts.CacheDirName, name)

	var (
		data []byte
		err  error
		ref  Reference
	)
	switch {
	case isImage(ext):
		data, err = os.ReadFile(path)
		if err != nil {
			return Reference{}, fmt.Errorf("iconpath: reading %s: %w", path, err)
		}
		ref = Reference{Kind: CachedFile, Path: rel, Index: 0}
	case isModule(path):
		pos, _, err := r.group(path, index)
		if err != nil {
			return Reference{}, err
		}
		data, err = r.groups.ExtractIconGroup(path, pos)
		if err != nil {
			return Reference{}, fmt.Errorf("iconpath: extracting %s,%d: %w", path, index, err)
		}
		ref = Reference{Kind: CachedFile, Path: rel, Index: 0, Split: true}
	default:
		return Reference{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}

	dir := filepath.Join(folder, r.opts.CacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Reference{}, fmt.Errorf("iconpath: %w", err)
	}
	if err := shell.Hide(dir); err != nil {
		log.Warnf("hiding %s: %v", dir, err)
	}
	if err := writeAtomic(filepath.Join(dir, name), data); err != nil {
		return Reference{}, err
	}
	log.Debugf("cached %s as %s", path, rel)
	return ref, nil
}

// group maps the chosen index to a position in the module's group list.
// A negative index names a resource ID, which must exist.
func (r *Resolver) group(path string, index int) (int, resource.GroupID, error) {
	groups := r.groups.ListIconGroups(path)
	if index >= 0 {
		if index >= len(groups) {
			return 0, resource.GroupID{}, fmt.Errorf("%w: %s has %d icon groups, index %d", ErrInvalidSelection, path, len(groups), index)
		}
		return index, groups[index], nil
	}
	for i, g := range groups {
		if !g.IsNamed() && int(g.ID) == -index {
			return i, g, nil
		}
	}
	return 0, resource.GroupID{}, fmt.Errorf("%w: %s has no icon group with ID %d", ErrInvalidSelection, path, -index)
}

func writeAtomic(dst string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("iconpath: %w", err)
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("iconpath: writing %s: %w", dst, err)
	}
	return nil
}

var (
	imageExts  = []string{".ico", ".png", ".jpg", ".jpeg", ".bmp"}
	moduleExts = []string{".exe", ".dll", ".cpl", ".ocx", ".scr"}
)

func isImage(ext string) bool {
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// IsModule reports whether path names a PE module that can carry icon
// resources.
func IsModule(path string) bool { return isModule(path) }

func isModule(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range moduleExts {
		if ext == e {
			return true
		}
	}
	return false
}

// IsIconSource reports whether path is a file the resolver can reference.
func IsIconSource(path string) bool {
	return isModule(path) || isImage(strings.ToLower(filepath.Ext(path)))
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// under reports whether path lies strictly inside dir, comparing without
// regard to case, and returns the remainder so that filepath.Join(dir, rel)
// gives back path.
func under(path, dir string) (string, bool) {
	dir = strings.TrimRight(dir, `\/`)
	if dir == "" || !hasPrefixFold(path, dir) || len(path) <= len(dir)+1 {
		return "", false
	}
	if !os.IsPathSeparator(path[len(dir)]) {
		return "", false
	}
	return path[len(dir)+1:], true
}
