package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/josephspurrier/goversioninfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want goversioninfo.FileVersion
		ok   bool
	}{
		{"1.2.3", goversioninfo.FileVersion{Major: 1, Minor: 2, Patch: 3}, true},
		{"v0.4", goversioninfo.FileVersion{Minor: 4}, true},
		{"1.2.3.4", goversioninfo.FileVersion{Major: 1, Minor: 2, Patch: 3, Build: 4}, true},
		{"1.2.3.4.5", goversioninfo.FileVersion{}, false},
		{"1.x", goversioninfo.FileVersion{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			fv, err := parseVersion(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fv)
		})
	}
}

func TestIconSourcePlainFile(t *testing.T) {
	path, cleanup, err := iconSource(`assets\app.ico`)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, `assets\app.ico`, path)
}

func TestIconSourceBadModule(t *testing.T) {
	fake := filepath.Join(t.TempDir(), "fake.exe")
	require.NoError(t, os.WriteFile(fake, []byte("MZ not really"), 0o644))
	_, _, err := iconSource(fake + ",0")
	assert.Error(t, err)
}
