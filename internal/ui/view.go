package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"manimark/internal/util/format"
)

const shownLogLines = 3

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("manimark")
	scene := fmt.Sprintf("%s › %s", filepath.Base(m.opts.AnimationFile), m.opts.SceneName)
	sub := m.styles.Subtitle.Render(scene + " • q: quit")
	return title + "  " + sub
}

func (m Model) viewStages() string {
	var b strings.Builder
	for _, r := range m.rows {
		var line string
		switch r.state {
		case rowDone:
			line = m.styles.Success.Render("✓ " + r.label)
		case rowFailed:
			line = m.styles.Error.Render("✗ " + r.label)
		case rowActive:
			line = m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Active.Render(r.label)
		default:
			line = m.styles.Pending.Render("  " + r.label)
		}
		b.WriteString(m.styles.Box.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewStatus() string {
	var b strings.Builder
	if !m.done && m.percent >= 0 && m.percent <= 100 {
		line := fmt.Sprintf("%s %5.1f%%", m.bar.ViewAs(m.percent/100.0), m.percent)
		if m.eta != nil {
			line += "  ETA " + format.HumanizeDuration(*m.eta)
		}
		if m.speed != nil {
			line += "  " + *m.speed
		}
		b.WriteString(m.styles.Box.Render(line))
		b.WriteString("\n")
	}

	status := m.styles.Info.Render(m.status)
	if m.err != nil {
		status = m.styles.Error.Render(m.status)
	}
	b.WriteString(m.styles.Box.Render(status))
	b.WriteString("\n")

	if m.opts.Verbose && len(m.logs) > 0 {
		start := len(m.logs) - shownLogLines
		if start < 0 {
			start = 0
		}
		for _, l := range m.logs[start:] {
			b.WriteString(m.styles.Box.Render(m.styles.Faint.Render(truncate(l, 100))))
			b.WriteString("\n")
		}
	}
	for _, w := range m.warnings {
		b.WriteString(m.styles.Box.Render(m.styles.Warning.Render("! " + w)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewFooter() string {
	if !m.done || m.err != nil {
		return ""
	}
	out := m.result.Output
	return "\n" + m.styles.Success.Render(fmt.Sprintf("✓ %s (%s)", out.OutputPath, format.HumanizeBytes(out.Bytes))) + "\n"
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
