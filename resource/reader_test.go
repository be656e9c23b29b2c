package resource

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalwings/folderstyle/ico"
)

type fakeModule struct {
	groups []GroupID
	data   map[GroupID][]byte
	icons  map[uint16][]byte
	closed *int
}

func (m *fakeModule) IconGroups() ([]GroupID, error) { return m.groups, nil }

func (m *fakeModule) GroupData(id GroupID) ([]byte, error) {
	d, ok := m.data[id]
	if !ok {
		return nil, errors.New("no such group")
	}
	return d, nil
}

func (m *fakeModule) IconData(id uint16) ([]byte, error) {
	d, ok := m.icons[id]
	if !ok {
		return nil, errors.New("no such icon")
	}
	return d, nil
}

func (m *fakeModule) Close() error {
	*m.closed++
	return nil
}

func groupBytes(entries ...ico.GRPICONDIRENTRY) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, ico.ICONDIR{Type: 1, Count: uint16(len(entries))})
	for _, e := range entries {
		binary.Write(&b, binary.LittleEndian, e)
	}
	return b.Bytes()
}

func grpEntry(size byte, id uint16, n int) ico.GRPICONDIRENTRY {
	return ico.GRPICONDIRENTRY{
		IconDirEntryCommon: ico.IconDirEntryCommon{Width: size, Height: size, Planes: 1, BitCount: 32, BytesInRes: uint32(n)},
		ID:                 id,
	}
}

func newFake() (*Reader, *fakeModule) {
	m := &fakeModule{
		groups: []GroupID{{Name: "MAINICON"}, {ID: 1}, {ID: 5}},
		data:   map[GroupID][]byte{},
		icons:  map[uint16][]byte{},
		closed: new(int),
	}
	r := NewReader(OpenerFunc(func(path string) (Module, error) {
		if path == "missing.exe" {
			return nil, errors.New("cannot map")
		}
		return m, nil
	}))
	return r, m
}

func TestListIconGroups(t *testing.T) {
	r, m := newFake()

	groups := r.ListIconGroups("app.exe")
	assert.Equal(t, []GroupID{{Name: "MAINICON"}, {ID: 1}, {ID: 5}}, groups)
	assert.Equal(t, "MAINICON", groups[0].String())
	assert.Equal(t, "#5", groups[2].String())
	assert.Equal(t, 1, *m.closed)

	assert.Empty(t, r.ListIconGroups("missing.exe"))
	assert.Empty(t, r.ListIconGroups(""))
	assert.False(t, r.HasIcons("missing.exe"))

	m.groups = nil
	assert.Empty(t, r.ListIconGroups("app.exe"))
	assert.False(t, r.HasIcons("app.exe"))
}

func TestExtractIconGroup(t *testing.T) {
	r, m := newFake()
	small := bytes.Repeat([]byte{1}, 12)
	big := bytes.Repeat([]byte{2}, 30)
	huge := []byte("\x89PNG\r\n\x1a\npayload")
	m.icons[10] = small
	m.icons[11] = big
	m.icons[12] = huge
	m.data[GroupID{ID: 1}] = groupBytes(grpEntry(16, 10, len(small)), grpEntry(32, 11, len(big)), grpEntry(0, 12, len(huge)))

	out, err := r.ExtractIconGroup("app.exe", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, *m.closed)

	entries, err := ico.DecodeHeaders(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(6+3*16), entries[0].ImageOffset)
	assert.Equal(t, entries[0].ImageOffset+12, entries[1].ImageOffset)
	assert.Equal(t, entries[1].ImageOffset+30, entries[2].ImageOffset)
	assert.Zero(t, entries[2].Width)

	images, err := ico.Split(out)
	require.NoError(t, err)
	assert.Equal(t, small, images[0].Data)
	assert.Equal(t, big, images[1].Data)
	assert.Equal(t, huge, images[2].Data)
}

func TestExtractIconGroupErrors(t *testing.T) {
	tests := []struct {
		comment string
		path    string
		index   int
		setup   func(m *fakeModule)
		err     error
		closes  int
	}{{
		comment: "index out of range",
		path:    "app.exe",
		index:   3,
		err:     ErrNotFound,
		closes:  1,
	}, {
		comment: "negative index",
		path:    "app.exe",
		index:   -1,
		err:     ErrNotFound,
		closes:  1,
	}, {
		comment: "unmappable module",
		path:    "missing.exe",
		err:     ErrNotFound,
	}, {
		comment: "bad group directory",
		path:    "app.exe",
		index:   2,
		setup: func(m *fakeModule) {
			m.data[GroupID{ID: 5}] = []byte{0, 0, 2, 0, 1, 0}
		},
		err:    ErrNotFound,
		closes: 1,
	}, {
		comment: "missing RT_ICON",
		path:    "app.exe",
		index:   0,
		setup: func(m *fakeModule) {
			m.icons[1] = []byte{1, 2, 3}
			m.data[GroupID{Name: "MAINICON"}] = groupBytes(grpEntry(16, 1, 3), grpEntry(32, 2, 3))
		},
		err:    ErrReconstruction,
		closes: 1,
	}}
	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			r, m := newFake()
			if tt.setup != nil {
				tt.setup(m)
			}
			out, err := r.ExtractIconGroup(tt.path, tt.index)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, out)
			assert.Equal(t, tt.closes, *m.closed)
		})
	}
}

func TestNewOpener(t *testing.T) {
	o, err := NewOpener("pe")
	require.NoError(t, err)
	assert.NotNil(t, o)

	o, err = NewOpener("")
	require.NoError(t, err)
	assert.NotNil(t, o)

	_, err = NewOpener("magic")
	assert.Error(t, err)
}

func TestPENotAModule(t *testing.T) {
	r := NewReader(PE)
	assert.Empty(t, r.ListIconGroups("reader_test.go"))
	_, err := r.ExtractIconGroup("reader_test.go", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
