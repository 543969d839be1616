// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"os"
	"path/filepath"
	"strings"
)

// FindFirstAvailable returns the path of the first candidate that exists as
// an executable in any of dirs. Candidates are tried in order; for each one
// every directory is scanned with every extension before moving on. It
// touches the filesystem only through isExec.
func FindFirstAvailable(candidates, dirs, exts []string, isExec func(path string) bool) (string, bool) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			for _, ext := range exts {
				p := filepath.Join(dir, name+ext)
				if isExec(p) {
					return p, true
				}
			}
		}
	}
	return "", false
}

// SearchPath returns the directories listed in PATH and the executable
// extensions of the host platform.
func SearchPath() (dirs, exts []string) {
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs, executableExtensions()
}

// Lookup finds the first available candidate on the host PATH.
func Lookup(candidates []string) (string, bool) {
	dirs, exts := SearchPath()
	return FindFirstAvailable(candidates, dirs, exts, IsExecutable)
}
