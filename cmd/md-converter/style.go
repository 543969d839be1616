// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/md-converter/pkg/types"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// outcomeStyle picks the style for a backend attempt outcome.
func outcomeStyle(o types.Outcome) lipgloss.Style {
	switch o {
	case types.OutcomeSuccess:
		return successStyle
	case types.OutcomeSkipped:
		return skippedStyle
	}
	return failureStyle
}
