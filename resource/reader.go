// Package resource reads icon groups out of PE modules and rebuilds them as
// standalone .ico files.
package resource

import (
	"errors"
	"fmt"
	"strconv"

	log "github.com/schollz/logger"

	"github.com/dentalwings/folderstyle/ico"
)

var (
	// ErrNotFound is returned when the requested icon group does not exist
	// or its directory is unusable.
	ErrNotFound = errors.New("resource: icon group not found")
	// ErrReconstruction is returned when an RT_ICON referenced by a group
	// cannot be loaded.
	ErrReconstruction = errors.New("resource: cannot reconstruct icon")
)

// GroupID identifies an RT_GROUP_ICON resource, either by number or by name.
type GroupID struct {
	ID   uint16
	Name string
}

// IsNamed reports whether the group is identified by a string.
func (g GroupID) IsNamed() bool { return g.Name != "" }

func (g GroupID) String() string {
	if g.IsNamed() {
		return g.Name
	}
	return "#" + strconv.Itoa(int(g.ID))
}

// Module is a mapped PE file that exposes its raw icon resources.
type Module interface {
	// IconGroups lists RT_GROUP_ICON resources in enumeration order.
	IconGroups() ([]GroupID, error)
	GroupData(id GroupID) ([]byte, error)
	IconData(id uint16) ([]byte, error)
	Close() error
}

// Opener maps a module file for resource access.
type Opener interface {
	Open(path string) (Module, error)
}

type OpenerFunc func(path string) (Module, error)

func (f OpenerFunc) Open(path string) (Module, error) { return f(path) }

// Reader lists and extracts icon groups. Every call opens and closes its own
// module mapping, so a Reader is safe for concurrent use.
type Reader struct {
	opener Opener
}

func NewReader(o Opener) *Reader {
	return &Reader{opener: o}
}

func (r *Reader) open(path string) (Module, error) {
	if path == "" {
		return nil, errors.New("resource: empty path")
	}
	return r.opener.Open(path)
}

// ListIconGroups returns the icon groups of the module at path. A module
// that cannot be mapped yields an empty list rather than an error.
func (r *Reader) ListIconGroups(path string) []GroupID {
	m, err := r.open(path)
	if err != nil {
		log.Debugf("listing icon groups of %q: %v", path, err)
		return nil
	}
	defer m.Close()
	groups, err := m.IconGroups()
	if err != nil {
		log.Debugf("enumerating icon groups of %q: %v", path, err)
		return nil
	}
	return groups
}

// HasIcons reports whether the module at path carries at least one icon group.
func (r *Reader) HasIcons(path string) bool {
	return len(r.ListIconGroups(path)) > 0
}

// ExtractIconGroup rebuilds the index-th icon group of the module at path as
// a complete .ico file. Nothing is returned unless every image loaded.
func (r *Reader) ExtractIconGroup(path string, index int) ([]byte, error) {
	m, err := r.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	defer m.Close()

	groups, err := m.IconGroups()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	if index < 0 || index >= len(groups) {
		return nil, fmt.Errorf("%w: %s has %d groups, index %d", ErrNotFound, path, len(groups), index)
	}
	id := groups[index]

	raw, err := m.GroupData(id)
	if err != nil {
		return nil, fmt.Errorf("%w: group %s: %v", ErrNotFound, id, err)
	}
	dir, err := ico.DecodeGroup(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: group %s: %v", ErrNotFound, id, err)
	}

	images := make([]ico.Image, 0, len(dir.Entries))
	for _, e := range dir.Entries {
		data, err := m.IconData(e.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: group %s icon %d: %v", ErrReconstruction, id, e.ID, err)
		}
		images = append(images, ico.Image{IconDirEntryCommon: e.IconDirEntryCommon, Data: data})
	}
	out, err := ico.Assemble(images)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReconstruction, err)
	}
	log.Debugf("extracted group %s of %q: %d images, %d bytes", id, path, len(images), len(out))
	return out, nil
}
