package multiverse

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// CleanText strips ANSI escape sequences and control characters from
// generated text and trims surrounding whitespace. Tabs and newlines are
// kept; CRLF and lone CR become LF.
func CleanText(s string) string {
	return strings.TrimSpace(stripControl(ansi.Strip(s)))
}

func stripControl(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeltaCleaner applies CleanText to streamed text one delta at a time.
// Leading whitespace is dropped until the first visible character; trailing
// whitespace is passed through. The zero value is ready to use.
type DeltaCleaner struct {
	started   bool
	pendingCR bool
}

// Clean returns the printable part of delta.
func (d *DeltaCleaner) Clean(delta string) string {
	if d.pendingCR {
		d.pendingCR = false
		if !strings.HasPrefix(delta, "\n") {
			delta = "\n" + delta
		}
	}
	if strings.HasSuffix(delta, "\r") {
		delta = strings.TrimSuffix(delta, "\r")
		d.pendingCR = true
	}
	s := stripControl(ansi.Strip(delta))
	if !d.started {
		s = strings.TrimLeft(s, " \t\n")
		if s == "" {
			return ""
		}
		d.started = true
	}
	return s
}
