package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/sameashark/se-composer/internal/params"
	"github.com/sameashark/se-composer/internal/preset"
)

var (
	accent = lipgloss.Color("#c678dd")
	muted  = lipgloss.Color("#5c6370")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	labelStyle  = lipgloss.NewStyle().Width(16).Foreground(muted)
)

type column struct {
	title string
	width int
	cell  func(preset.Preset) string
}

var presetColumns = []column{
	{"NAME", 20, func(p preset.Preset) string { return p.Name }},
	{"OSC", 10, func(p preset.Preset) string { return string(p.Params.Oscillator) }},
	{"NOTES", 7, func(p preset.Preset) string { return fmt.Sprint(len(p.Notes)) }},
	{"VOLUME", 9, func(p preset.Preset) string { return fmt.Sprintf("%.1f dB", p.Params.MasterVolume) }},
	{"REPEAT", 8, func(p preset.Preset) string { return fmt.Sprintf("%.1f Hz", p.Params.RepeatSpeed) }},
}

// nameWidth gives the name column whatever a terminal on stdout leaves
// over, within limits.
func nameWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return presetColumns[0].width
	}
	rest := 0
	for _, c := range presetColumns[1:] {
		rest += c.width
	}
	return min(max(width-rest, 12), 40)
}

// renderPresets lays the list out as a table, newest first.
func renderPresets(list []preset.Preset) string {
	widths := make([]int, len(presetColumns))
	for i, c := range presetColumns {
		widths[i] = c.width
	}
	widths[0] = nameWidth()
	row := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = style.Width(widths[i]).MaxWidth(widths[i]).Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	head := make([]string, len(presetColumns))
	for i, c := range presetColumns {
		head[i] = c.title
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("%d presets", len(list))), row(head, headerStyle)}
	for _, p := range list {
		cells := make([]string, len(presetColumns))
		for i, c := range presetColumns {
			cells[i] = c.cell(p)
		}
		lines = append(lines, row(cells, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderParams prints the fields a generated sample sets.
func renderParams(p params.Parameters) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("parameters"))
	field := func(label, value string) {
		b.WriteString("\n" + labelStyle.Render(label) + value)
	}
	field("oscillator", string(p.Oscillator))
	field("adsr", fmt.Sprintf("%.3f %.3f %.2f %.3f", p.Attack, p.Decay, p.Sustain, p.Release))
	field("filter", fmt.Sprintf("%.0f Hz, env %.0f cents", p.FilterCutoff, p.FilterEnvAmount))
	field("sweep", fmt.Sprintf("%+.1f st over %.2fs", p.PitchSweep, p.PitchSweepTime))
	field("repeat", fmt.Sprintf("%.1f Hz, arp %+.0f st", p.RepeatSpeed, p.ArpStep))
	field("lfo", fmt.Sprintf("%s %s %.1f Hz depth %.1f", p.LFOTarget, p.LFOShape, p.LFORate, p.LFODepth))
	field("delay", fmt.Sprintf("feedback %.2f", p.DelayFeedback))
	field("volume", fmt.Sprintf("%.1f dB", p.MasterVolume))
	return b.String()
}
