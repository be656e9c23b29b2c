package iconpath

import "strconv"

type Kind int

const (
	None Kind = iota
	// Unchanged is a relative or otherwise non-absolute input kept verbatim.
	Unchanged
	// Relative points into the customized folder itself.
	Relative
	// SystemSymbolic is a %SystemRoot% path with a negative resource ID.
	SystemSymbolic
	// CachedFile is a copy under the folder's cache directory.
	CachedFile
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Unchanged:
		return "unchanged"
	case Relative:
		return "relative"
	case SystemSymbolic:
		return "system"
	case CachedFile:
		return "cached"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// desktop.ini keys in [.ShellClassInfo]
const (
	KeyIconResource = "IconResource"
	KeyIconFile     = "IconFile"
	KeyIconIndex    = "IconIndex"
)

// IconKeys lists every key an icon reference may occupy.
var IconKeys = []string{KeyIconResource, KeyIconFile, KeyIconIndex}

type Pair struct {
	Key, Value string
}

// Reference is where a folder's icon lives, as it will be persisted.
type Reference struct {
	Kind  Kind
	Path  string
	Index int
	// Split writes IconFile/IconIndex instead of a single IconResource.
	Split bool
}

// Pairs renders the reference as ordered desktop.ini entries. The zero
// Reference renders nothing.
func (r Reference) Pairs() []Pair {
	switch {
	case r.Kind == None:
		return nil
	case r.Kind == Unchanged:
		return []Pair{{KeyIconResource, r.Path}}
	case r.Split:
		return []Pair{
			{KeyIconFile, r.Path},
			{KeyIconIndex, strconv.Itoa(r.Index)},
		}
	}
	return []Pair{{KeyIconResource, r.Path + "," + strconv.Itoa(r.Index)}}
}

// Location is the file and index handed to the shell.
func (r Reference) Location() (file string, index int) {
	if r.Kind == Unchanged {
		return Split(r.Path)
	}
	return r.Path, r.Index
}
