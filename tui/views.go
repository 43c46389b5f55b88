package tui

import (
	"fmt"
	"strings"

	"protonup-go/types"
	"protonup-go/util"
)

// View renders one line per request plus a footer.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Installing compatibility tools"))
	b.WriteString("\n")

	for _, r := range m.rows {
		b.WriteString(m.renderRow(r))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderRow(r *row) string {
	name := versionStyle.Render(r.req.Release.Version)

	switch {
	case r.err != nil:
		return name + stageStyle.Render(failStyle.Render("Failed")) + " " + failStyle.Render(r.err.Error())
	case r.state == nil:
		return name + stageStyle.Render(faintStyle.Render("Queued"))
	}

	state := r.state.State()
	stage := activeStyle.Render(state.String())
	if state == types.StateDone {
		stage = doneStyle.Render(state.String())
	}

	line := name + stageStyle.Render(stage) + " " + r.bar.ViewAs(r.state.Percent())
	detail := fmt.Sprintf(" %s / %s", util.FormatSize(r.state.BytesDone()), util.FormatSize(r.state.Total()))
	if state == types.StateDownloading {
		detail += " " + util.FormatSpeed(r.speed)
	}
	return line + faintStyle.Render(detail)
}

func (m *Model) renderFooter() string {
	if m.cancelled {
		return footerStyle.Render(activeStyle.Render("Cancelling, waiting for running installs to stop..."))
	}
	if !m.ready {
		return footerStyle.Render(faintStyle.Render("Connecting..."))
	}
	return footerStyle.Render(fmt.Sprintf("%s Cancel", keyStyle.Render("q")))
}
