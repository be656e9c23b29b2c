package folderstyle

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalwings/folderstyle/desktopini"
	"github.com/dentalwings/folderstyle/iconpath"
	"github.com/dentalwings/folderstyle/resource"
)

type call struct {
	folder, file string
	index        int
	clear        bool
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) SetFolderIcon(folder, file string, index int) error {
	r.calls = append(r.calls, call{folder: folder, file: file, index: index})
	return r.err
}

func (r *recorder) ClearFolderIcon(folder string) error {
	r.calls = append(r.calls, call{folder: folder, clear: true})
	return r.err
}

type groups map[string][]resource.GroupID

func (g groups) ListIconGroups(path string) []resource.GroupID { return g[filepath.Base(path)] }

func (g groups) ExtractIconGroup(path string, index int) ([]byte, error) {
	return []byte{0, 0, 1, 0, 1, 0}, nil
}

func newEditor(t *testing.T) (*Editor, *recorder, string, string) {
	root := t.TempDir()
	folder := filepath.Join(root, "Music")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	win := filepath.Join(root, "Windows")
	g := groups{"shell32.dll": {{ID: 3}, {ID: 4}}, "tool.exe": {{ID: 1}}}
	rec := &recorder{}
	return NewEditor(iconpath.NewResolver(g, iconpath.Options{WindowsDir: win}), rec), rec, folder, win
}

func writeIni(t *testing.T, folder, text string) {
	require.NoError(t, os.WriteFile(filepath.Join(folder, desktopini.FileName), []byte(text), 0o644))
}

func TestSaveClearsStaleKeys(t *testing.T) {
	e, rec, folder, win := newEditor(t)
	writeIni(t, folder, "[.ShellClassInfo]\r\nIconFile=old.ico\r\nIconIndex=3\r\nInfoTip=hello\r\n")

	ref, err := e.Save(folder, Settings{Alias: "Songs", Icon: filepath.Join(win, "System32", "shell32.dll") + ",1"})
	require.NoError(t, err)
	assert.Equal(t, iconpath.SystemSymbolic, ref.Kind)

	ini, err := desktopini.Load(folder)
	require.NoError(t, err)
	assert.Equal(t, "", ini.Get("IconFile"))
	assert.Equal(t, "", ini.Get("IconIndex"))
	assert.Equal(t, "hello", ini.Get("InfoTip"))
	assert.Equal(t, "Songs", ini.Get(desktopini.KeyLocalizedName))
	sep := string(filepath.Separator)
	assert.Equal(t, "%SystemRoot%"+sep+"System32"+sep+"shell32.dll,-4", ini.Get("IconResource"))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, call{folder: folder, file: "%SystemRoot%" + sep + "System32" + sep + "shell32.dll", index: -4}, rec.calls[0])

	got, err := e.Load(folder)
	require.NoError(t, err)
	assert.Equal(t, Settings{Alias: "Songs", Icon: "%SystemRoot%" + sep + "System32" + sep + "shell32.dll,-4"}, got)
}

func TestSaveExtractedThenLoad(t *testing.T) {
	e, rec, folder, _ := newEditor(t)
	src := filepath.Join(filepath.Dir(folder), "bin", "tool.exe")

	ref, err := e.Save(folder, Settings{Icon: src})
	require.NoError(t, err)
	assert.True(t, ref.Split)
	rel := filepath.Join(iconpath.DefaultCacheDir, "tool_0.ico")
	assert.Equal(t, call{folder: folder, file: rel, index: 0}, rec.calls[0])

	got, err := e.Load(folder)
	require.NoError(t, err)
	assert.Equal(t, Settings{Icon: rel + ",0"}, got)
}

func TestSaveEmptyRemovesAliasAndIcon(t *testing.T) {
	e, rec, folder, _ := newEditor(t)
	writeIni(t, folder, "[.ShellClassInfo]\r\nLocalizedResourceName=Old\r\nIconResource=a.ico,0\r\n")

	ref, err := e.Save(folder, Settings{})
	require.NoError(t, err)
	assert.Equal(t, iconpath.None, ref.Kind)
	assert.Equal(t, []call{{folder: folder, clear: true}}, rec.calls)

	got, err := e.Load(folder)
	require.NoError(t, err)
	assert.Equal(t, Settings{}, got)
}

func TestSaveNothingCreatesNoFile(t *testing.T) {
	e, _, folder, _ := newEditor(t)
	_, err := e.Save(folder, Settings{})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(folder, desktopini.FileName))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestSaveResolveError(t *testing.T) {
	e, rec, folder, _ := newEditor(t)
	_, err := e.Save(folder, Settings{Alias: "x", Icon: filepath.Join(folder, "..", "notes.txt")})
	assert.ErrorIs(t, err, iconpath.ErrUnsupportedSource)
	assert.Empty(t, rec.calls, "nothing is written or notified")
	_, statErr := os.Stat(filepath.Join(folder, desktopini.FileName))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestSaveUnreadableIniCachesNothing(t *testing.T) {
	e, rec, folder, _ := newEditor(t)
	require.NoError(t, os.Mkdir(filepath.Join(folder, desktopini.FileName), 0o755))
	src := filepath.Join(filepath.Dir(folder), "bin", "tool.exe")

	_, err := e.Save(folder, Settings{Icon: src})
	require.Error(t, err)
	assert.Empty(t, rec.calls)
	_, statErr := os.Stat(filepath.Join(folder, iconpath.DefaultCacheDir))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "no orphaned cache copy")
}

func TestNotifierPermission(t *testing.T) {
	e, rec, folder, _ := newEditor(t)
	rec.err = fs.ErrPermission
	_, err := e.Save(folder, Settings{Alias: "x", Icon: "icon.ico"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestClear(t *testing.T) {
	e, rec, folder, _ := newEditor(t)
	writeIni(t, folder, "[.ShellClassInfo]\r\nLocalizedResourceName=Keep\r\nIconResource=a.ico,0\r\nIconFile=a.ico\r\nIconIndex=0\r\n")

	require.NoError(t, e.Clear(folder))
	assert.Equal(t, []call{{folder: folder, clear: true}}, rec.calls)

	got, err := e.Load(folder)
	require.NoError(t, err)
	assert.Equal(t, Settings{Alias: "Keep"}, got)
}

func TestLoadIconFileFallback(t *testing.T) {
	e, _, folder, _ := newEditor(t)
	writeIni(t, folder, "[.ShellClassInfo]\r\nIconFile=pic.ico\r\n")
	got, err := e.Load(folder)
	require.NoError(t, err)
	assert.Equal(t, "pic.ico,0", got.Icon)
}
