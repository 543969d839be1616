// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package process

import (
	"os"
	"strings"
)

const defaultPathExt = ".EXE;.CMD;.BAT"

func executableExtensions() []string {
	pathExt := os.Getenv("PATHEXT")
	if pathExt == "" {
		pathExt = defaultPathExt
	}
	var exts []string
	for _, ext := range strings.Split(pathExt, ";") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

// IsExecutable reports whether path is a regular file. Windows decides
// executability by extension, which the caller supplies.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
