package main

import "github.com/charmbracelet/lipgloss"

// Styling for the CLI help output.
var (
	paragraph = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 0, 2).
			Render

	keyword = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}).
		Bold(true).
		Render
)
