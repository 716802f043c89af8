package content

// DiagnosticPrefix is prepended to a provider failure message when it is
// rendered as a panel's display text.
const DiagnosticPrefix = "Command failed: "

// Failure renders a provider error as panel text through the layout
// template, so a labelled panel keeps its label. A multi-line message spills
// into the tooltip like regular output.
func Failure(err error, template string) Result {
	if err == nil {
		return Result{}
	}
	return Process(DiagnosticPrefix+err.Error(), template)
}
