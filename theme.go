package multiverse

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index disables color.
type Theme struct {
	Heading int // Character title
	Field   int // Detail field names
	Muted   int // Metadata, previews
	Error   int // Error messages
	Success int // Success indicators
	Accent  int // Section headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Heading: 5,
		Field:   4,
		Muted:   8,
		Error:   1,
		Success: 2,
		Accent:  3,
	}
}
