package provider

import (
	"context"
	"strings"
	"time"
)

// Clock option keywords recognised in a panel's Options string.
const (
	OptionShowDate    = "ShowDate"
	OptionShowSeconds = "ShowSeconds"
)

// Layouts used by the clock panel.
const (
	ShortDateLayout = "01/02/2006"
	ShortTimeLayout = "15:04"
	LongTimeLayout  = "15:04:05"
)

// Clock renders the current local time. The command is ignored.
type Clock struct {
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Produce formats the current time according to options. It never fails.
func (c *Clock) Produce(_ context.Context, _ string, options string) (string, error) {
	now := time.Now
	if c != nil && c.Now != nil {
		now = c.Now
	}
	t := now().Local()

	var b strings.Builder
	if strings.Contains(options, OptionShowDate) {
		b.WriteString(t.Format(ShortDateLayout))
		b.WriteByte(' ')
	}
	if strings.Contains(options, OptionShowSeconds) {
		b.WriteString(t.Format(LongTimeLayout))
	} else {
		b.WriteString(t.Format(ShortTimeLayout))
	}
	return b.String(), nil
}

// Inline reports that formatting the time never blocks.
func (c *Clock) Inline() bool { return true }

// Static returns a fixed literal text.
type Static struct {
	Text string
}

// Produce returns the configured text verbatim.
func (s *Static) Produce(context.Context, string, string) (string, error) {
	return s.Text, nil
}

// Inline reports that static text never blocks.
func (s *Static) Inline() bool { return true }
