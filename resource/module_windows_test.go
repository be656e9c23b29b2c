//go:build windows

package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalwings/folderstyle/ico"
)

func shell32(t *testing.T) string {
	p := filepath.Join(os.Getenv("SystemRoot"), "System32", "shell32.dll")
	if _, err := os.Stat(p); err != nil {
		t.Skip("shell32.dll not available")
	}
	return p
}

func TestBackendsAgree(t *testing.T) {
	path := shell32(t)
	native := NewReader(Native).ListIconGroups(path)
	pe := NewReader(PE).ListIconGroups(path)
	require.NotEmpty(t, native)
	assert.ElementsMatch(t, native, pe)
}

func TestNativeExtract(t *testing.T) {
	path := shell32(t)
	r := NewReader(Native)
	out, err := r.ExtractIconGroup(path, 3)
	require.NoError(t, err)
	images, err := ico.Split(out)
	require.NoError(t, err)
	assert.NotEmpty(t, images)
}
