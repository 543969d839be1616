// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !unix && !windows

package process

import "os"

func executableExtensions() []string { return []string{""} }

// IsExecutable reports whether path is a regular file.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
