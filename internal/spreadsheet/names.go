// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spreadsheet

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	// MaxSheetNameLength is the longest worksheet name a workbook accepts.
	MaxSheetNameLength = 31

	fallbackSheetName   = "Table"
	forbiddenSheetRunes = `[]*/\?:`
)

// SanitizeSheetName removes characters a worksheet name may not contain,
// trims it, and bounds its length. A name with nothing left becomes
// "Table".
func SanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(forbiddenSheetRunes, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	// Workbooks also reject a leading or trailing apostrophe.
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(b.String()), "'"))
	if cleaned == "" {
		return fallbackSheetName
	}
	if fitted := fitName(cleaned, MaxSheetNameLength); fitted != "" {
		return fitted
	}
	return fallbackSheetName
}

// fitName truncates s to at most n runes without leaving a trailing
// apostrophe.
func fitName(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n])
	}
	return strings.TrimRight(s, "'")
}

// Allocator hands out worksheet names that are valid and unique within one
// workbook, comparing names case-insensitively.
type Allocator struct {
	fold  cases.Caser
	taken map[string]struct{}
}

// NewAllocator creates an Allocator with no names taken.
func NewAllocator() *Allocator {
	return &Allocator{
		fold:  cases.Fold(),
		taken: make(map[string]struct{}),
	}
}

// Allocate sanitizes desired and, if the result is already taken, appends
// _1, _2, ... until it is unique. A suffixed name longer than the limit is
// truncated; if that truncation cuts into the suffix and collides, the base
// is shortened instead so the whole suffix fits. The returned name is
// registered before Allocate returns.
func (a *Allocator) Allocate(desired string) string {
	base := SanitizeSheetName(desired)
	name := base

	for n := 1; a.Taken(name); n++ {
		suffix := "_" + strconv.Itoa(n)
		name = fitName(base+suffix, MaxSheetNameLength)
		if a.Taken(name) && utf8.RuneCountInString(base)+len(suffix) > MaxSheetNameLength {
			name = fitName(base, MaxSheetNameLength-len(suffix)) + suffix
		}
	}

	a.taken[a.fold.String(name)] = struct{}{}
	return name
}

// Taken reports whether name, ignoring case, has been allocated.
func (a *Allocator) Taken(name string) bool {
	_, ok := a.taken[a.fold.String(name)]
	return ok
}
