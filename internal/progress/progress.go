// Package progress writes row-counter progress lines to stderr while a
// merger works through a table. Output is suppressed when stdout is not a
// terminal so piped output stays clean.
package progress

import (
	"fmt"
	"io"
	"os"
)

// Counter reports n/total progress for one table.
type Counter struct {
	label   string
	total   int
	done    int
	out     io.Writer
	enabled bool
}

// NewCounter returns a counter for total items, enabled only on a terminal.
func NewCounter(label string, total int) *Counter {
	return &Counter{
		label:   label,
		total:   total,
		out:     os.Stderr,
		enabled: isatty(os.Stdout),
	}
}

// Increment advances the counter by one and redraws the progress line.
func (c *Counter) Increment() {
	c.done++
	if !c.enabled || c.total == 0 {
		return
	}
	pct := c.done * 100 / c.total
	fmt.Fprintf(c.out, "\r%s [%s] %d/%d", c.label, bar(pct, 20), c.done, c.total)
}

// Finish clears the progress line and prints a completion mark.
func (c *Counter) Finish() {
	if c.enabled {
		fmt.Fprintf(c.out, "\r\033[K")
	}
}

func bar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	b := ""
	for i := 0; i < width; i++ {
		if i < filled {
			b += "█"
		} else {
			b += "░"
		}
	}
	return b
}

// isatty checks if the file descriptor is a terminal
func isatty(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
