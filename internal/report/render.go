package report

import (
	"fmt"
	"strings"
)

// Render produces the delivery message for a report, using the HTML
// subset the messaging collaborators understand. Rendering is a pure
// presentation step over the structured report; it never changes
// severities or ordering.
func Render(r *Report) string {
	var b strings.Builder

	b.WriteString(r.Overall().Icon())
	fmt.Fprintf(&b, "<b>Server Status Report</b> - %s\n", code(r.ServerName))

	for _, line := range r.Lines {
		b.WriteString(line.Severity.Icon())
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", line.Label, code(line.Value))

		for _, detail := range line.Detail {
			b.WriteString(code(detail))
			b.WriteString("\n")
		}
		for _, vol := range line.Volumes {
			writeVolume(&b, vol)
		}
	}
	return b.String()
}

func writeVolume(b *strings.Builder, vol VolumeDetail) {
	fmt.Fprintf(b, "%s%s\n", italicUnderline("Volume: "), code(vol.Name))
	writeItems(b, "Unhealthy Bricks: ", vol.UnhealthyBricks)
	writeItems(b, "Unhealthy Processes: ", vol.UnhealthyProcesses)
	writeItems(b, "Errors/Warnings: ", vol.ErrorsWarnings)
	writeItems(b, "Active Tasks: ", vol.ActiveTasks)
}

func writeItems(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	wrapped := make([]string, 0, len(items))
	for _, item := range items {
		wrapped = append(wrapped, code(item))
	}
	b.WriteString(italicUnderline(label))
	b.WriteString(strings.Join(wrapped, ", "))
	b.WriteString("\n")
}

func code(text string) string {
	return "<code>" + text + "</code>"
}

func italicUnderline(text string) string {
	return "<u><i>" + text + "</i></u>"
}
