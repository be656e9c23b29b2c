package discover

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFunc func(path string) bool

func (f checkerFunc) HasIcons(path string) bool { return f(path) }

// withIcons treats every module whose name does not start with "plain" as
// carrying icons.
var withIcons = checkerFunc(func(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), "plain")
})

func touch(t *testing.T, root string, names ...string) {
	for _, n := range names {
		p := filepath.Join(root, filepath.FromSlash(n))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"readme.txt",
		"uninstall.exe",
		"app.exe",
		"plain.dll",
		"res/icons.dll",
		"res/logo.ico",
		"res/photo.png",
		"a/b/c/d/e/f/deep.ico",
		"a/b/c/d/e/f/g/too-deep.ico",
	)

	var (
		mu      sync.Mutex
		reports int
		final   []string
	)
	s := NewScanner(withIcons, Options{Progress: func(found []string, done bool) {
		mu.Lock()
		defer mu.Unlock()
		reports++
		if done {
			final = found
		}
	}})
	found, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app.exe",
		"a/b/c/d/e/f/deep.ico",
		"res/icons.dll",
		"res/logo.ico",
		"res/photo.png",
		"uninstall.exe",
	}, rel(t, root, found))
	assert.Equal(t, found, final)
	assert.GreaterOrEqual(t, reports, 2)
}

func TestScanExclude(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "app.exe", "node_modules/x/icon.ico", "build/out.exe", "keep/a.ico")
	s := NewScanner(withIcons, Options{Exclude: []string{"node_modules/", "build"}})
	found, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.exe", "keep/a.ico"}, rel(t, root, found))
}

func TestScanSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	touch(t, outside, "elsewhere.ico")
	touch(t, root, "mine.ico")
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skip("symlinks not available:", err)
	}
	found, err := NewScanner(withIcons, Options{}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine.ico"}, rel(t, root, found))
}

func TestScanMaxDepth(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "top.ico", "one/two.ico", "one/two/three.ico")
	found, err := NewScanner(withIcons, Options{MaxDepth: 1}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"one/two.ico", "top.ico"}, rel(t, root, found))
}

func TestScanCancel(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "first.ico", "sub/second.ico")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewScanner(withIcons, Options{Progress: func(found []string, done bool) {
		if !done {
			cancel()
		}
	}})
	found, err := s.Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first.ico"}, rel(t, root, found))
}

func TestScanRootErrors(t *testing.T) {
	_, err := NewScanner(withIcons, Options{}).Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	f := filepath.Join(t.TempDir(), "file.ico")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	assert.ErrorIs(t, Check(f), ErrNotDir)
	assert.NoError(t, Check(filepath.Dir(f)))
}

func TestRank(t *testing.T) {
	got := Rank([]string{"b.dll", "unins000.exe", "a.ico", "setup.exe", "Uninstall.ico", "a.ico"})
	assert.Equal(t, []string{"setup.exe", "a.ico", "b.dll", "unins000.exe", "Uninstall.ico"}, got)
}
