// Package content turns raw provider output into the text a panel displays.
// The same transformation is applied to every provider variant: the first line
// becomes the display text (optionally wrapped in a layout template) and any
// remaining lines become the tooltip.
package content

import "strings"

// Newline is the line separator used to split provider output and to join
// tooltip lines.
const Newline = "\n"

// Marker is the substitution marker recognised in layout templates.
const Marker = "{content}"

// Result is the outcome of running raw text through the pipeline.
type Result struct {
	// Display is the primary, single-line text shown in the strip.
	Display string
	// Tooltip holds every line after the first, each followed by Newline.
	Tooltip string
}

// Lines splits raw text into lines. Carriage-return line endings are
// normalised first. Empty input yields no lines.
func Lines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", Newline)
	return strings.Split(raw, Newline)
}

// Apply substitutes primary into template. An empty template yields primary
// verbatim.
func Apply(template, primary string) string {
	if template == "" {
		return primary
	}
	return strings.ReplaceAll(template, Marker, primary)
}

// Process runs raw provider text through the pipeline.
// It has no hidden state: identical input always yields identical output.
func Process(raw, template string) Result {
	lines := Lines(raw)
	if len(lines) == 0 {
		return Result{}
	}

	res := Result{Display: Apply(template, lines[0])}
	if len(lines) > 1 {
		var b strings.Builder
		for _, line := range lines[1:] {
			b.WriteString(line)
			b.WriteString(Newline)
		}
		res.Tooltip = b.String()
	}
	return res
}

// TrimTrailingBlankLines removes whitespace-only lines from the end of s.
// Blank lines between non-blank lines are kept verbatim, as is any leading
// whitespace on the retained lines. Trailing whitespace after the last
// non-blank line is dropped.
func TrimTrailingBlankLines(s string) string {
	lines := Lines(s)
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end == 0 {
		return ""
	}
	return strings.TrimRight(strings.Join(lines[:end], Newline), " \t\r\n")
}
