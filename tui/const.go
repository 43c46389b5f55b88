package tui

import (
	"time"

	lp "github.com/charmbracelet/lipgloss"
)

const (
	colorSuccess = "10"
	colorWarning = "11"
	colorInfo    = "12"
	colorError   = "9"
	colorFaint   = "240"

	// progress is polled at 20 Hz
	tickRate = 50 * time.Millisecond

	progressBarWidth = 30
	colWidthVersion  = 28
	colWidthStage    = 12
)

var (
	headerStyle  = lp.NewStyle().Bold(true).Padding(0, 1).MarginBottom(1)
	versionStyle = lp.NewStyle().Width(colWidthVersion)
	stageStyle   = lp.NewStyle().Width(colWidthStage)
	doneStyle    = lp.NewStyle().Foreground(lp.Color(colorSuccess))
	failStyle    = lp.NewStyle().Foreground(lp.Color(colorError))
	activeStyle  = lp.NewStyle().Foreground(lp.Color(colorWarning))
	faintStyle   = lp.NewStyle().Foreground(lp.Color(colorFaint))
	keyStyle     = lp.NewStyle().Foreground(lp.Color(colorInfo))
	footerStyle  = lp.NewStyle().MarginTop(1).Padding(0, 1)
)
