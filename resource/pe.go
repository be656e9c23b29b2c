package resource

import (
	"errors"
	"fmt"
	"os"

	"github.com/tc-hib/winres"
)

// PE opens modules by parsing the file's resource directory. Nothing is
// loaded or executed, so it works on every platform.
var PE Opener = OpenerFunc(openPE)

type peModule struct {
	rs *winres.ResourceSet
	// language each group was first seen in, to pick matching RT_ICONs
	langs map[GroupID]uint16
	lang  uint16
}

func openPE(path string) (Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rs, err := winres.LoadFromEXE(f)
	switch {
	case errors.Is(err, winres.ErrNoResources):
		rs = &winres.ResourceSet{}
	case err != nil:
		return nil, fmt.Errorf("resource: reading %s: %w", path, err)
	}
	return &peModule{rs: rs, langs: map[GroupID]uint16{}}, nil
}

func toGroupID(id winres.Identifier) (GroupID, bool) {
	switch v := id.(type) {
	case winres.ID:
		return GroupID{ID: uint16(v)}, true
	case winres.Name:
		return GroupID{Name: string(v)}, true
	}
	return GroupID{}, false
}

func (g GroupID) identifier() winres.Identifier {
	if g.IsNamed() {
		return winres.Name(g.Name)
	}
	return winres.ID(g.ID)
}

func (m *peModule) IconGroups() ([]GroupID, error) {
	var groups []GroupID
	m.rs.WalkType(winres.RT_GROUP_ICON, func(resID winres.Identifier, langID uint16, _ []byte) bool {
		id, ok := toGroupID(resID)
		if !ok {
			return true
		}
		if _, seen := m.langs[id]; !seen {
			m.langs[id] = langID
			groups = append(groups, id)
		}
		return true
	})
	return groups, nil
}

func (m *peModule) GroupData(id GroupID) ([]byte, error) {
	m.lang = m.langs[id]
	return m.lookup(winres.RT_GROUP_ICON, id.identifier(), m.lang)
}

func (m *peModule) IconData(id uint16) ([]byte, error) {
	return m.lookup(winres.RT_ICON, winres.ID(id), m.lang)
}

// lookup prefers the given language and falls back to any other one.
func (m *peModule) lookup(typeID, resID winres.Identifier, lang uint16) ([]byte, error) {
	if data := m.rs.Get(typeID, resID, lang); data != nil {
		return data, nil
	}
	var found []byte
	m.rs.WalkType(typeID, func(id winres.Identifier, _ uint16, data []byte) bool {
		if id == resID {
			found = data
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("resource %v/%v missing", typeID, resID)
	}
	return found, nil
}

func (m *peModule) Close() error { return nil }
