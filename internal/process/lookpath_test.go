// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFirstAvailable(t *testing.T) {
	exists := func(paths ...string) func(string) bool {
		set := make(map[string]bool)
		for _, p := range paths {
			set[filepath.FromSlash(p)] = true
		}
		return func(p string) bool { return set[p] }
	}

	tests := []struct {
		name       string
		candidates []string
		dirs       []string
		exts       []string
		isExec     func(string) bool
		want       string
		wantOK     bool
	}{
		{
			name:       "first candidate wins over later directories",
			candidates: []string{"google-chrome", "chromium"},
			dirs:       []string{"/usr/bin", "/opt/bin"},
			exts:       []string{""},
			isExec:     exists("/usr/bin/chromium", "/opt/bin/google-chrome"),
			want:       filepath.FromSlash("/opt/bin/google-chrome"),
			wantOK:     true,
		},
		{
			name:       "falls through to later candidate",
			candidates: []string{"google-chrome", "chromium"},
			dirs:       []string{"/usr/bin"},
			exts:       []string{""},
			isExec:     exists("/usr/bin/chromium"),
			want:       filepath.FromSlash("/usr/bin/chromium"),
			wantOK:     true,
		},
		{
			name:       "extensions are appended",
			candidates: []string{"msedge"},
			dirs:       []string{"/edge"},
			exts:       []string{".EXE", ".CMD"},
			isExec:     exists("/edge/msedge.CMD"),
			want:       filepath.FromSlash("/edge/msedge.CMD"),
			wantOK:     true,
		},
		{
			name:       "empty directories are ignored",
			candidates: []string{"chromium"},
			dirs:       []string{"", "/usr/bin"},
			exts:       []string{""},
			isExec:     exists("chromium", "/usr/bin/chromium"),
			want:       filepath.FromSlash("/usr/bin/chromium"),
			wantOK:     true,
		},
		{
			name:       "nothing found",
			candidates: []string{"google-chrome"},
			dirs:       []string{"/usr/bin"},
			exts:       []string{""},
			isExec:     exists(),
		},
		{
			name:       "no PATH",
			candidates: []string{"google-chrome"},
			exts:       []string{""},
			isExec:     func(string) bool { return true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindFirstAvailable(tt.candidates, tt.dirs, tt.exts, tt.isExec)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_ScansPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "fake-browser")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "not-executable")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0o644))

	t.Setenv("PATH", dir)

	got, ok := Lookup([]string{"missing", "fake-browser"})
	require.True(t, ok)
	assert.Equal(t, exe, got)

	assert.False(t, IsExecutable(filepath.Join(dir)), "directories are not executables")
	assert.False(t, IsExecutable(filepath.Join(dir, "nope")))
}
