package format

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// DisableColors turns off ANSI output globally.
func DisableColors() {
	color.NoColor = true
}

// Check and Cross are the step result marks.
func Check() string { return Green("✓") }
func Cross() string { return Red("✗") }

func ColorLatency(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 100:
		return Green(fmt.Sprintf("%dms", ms))
	case ms < 300:
		return Yellow(fmt.Sprintf("%dms", ms))
	default:
		return Red(fmt.Sprintf("%dms", ms))
	}
}

func ColorBool(b bool) string {
	if b {
		return Green("true")
	}
	return Yellow("false")
}
