package multiverse_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/multiverse"
	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Name: Lyra", "Name: Lyra"},
		{"ansi color", "\x1b[31mLyra\x1b[0m", "Lyra"},
		{"osc title", "\x1b]0;title\x07Lyra", "Lyra"},
		{"control characters", "Ly\x01r\x07a\x7f", "Lyra"},
		{"keeps tabs and newlines", "Name:\tLyra\nRace: Elf", "Name:\tLyra\nRace: Elf"},
		{"crlf", "Name: Lyra\r\nRace: Elf\r\n", "Name: Lyra\nRace: Elf"},
		{"lone cr", "Name: Lyra\rRace: Elf", "Name: Lyra\nRace: Elf"},
		{"trims", "\n\n  Lyra  \n", "Lyra"},
		{"only escapes", "\x1b[31m\x1b[0m", ""},
		{"unicode", "\x1b[1m龍の騎士\x1b[0m ✓", "龍の騎士 ✓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, multiverse.CleanText(tt.in))
		})
	}
}

func TestDeltaCleaner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		deltas []string
		want   string
	}{
		{"plain", []string{"Name: ", "Lyra"}, "Name: Lyra"},
		{"ansi per delta", []string{"\x1b[31mName", ": Lyra\x1b[0m"}, "Name: Lyra"},
		{"control characters", []string{"Ly\x01r", "\x07a\x7f"}, "Lyra"},
		{"leading whitespace", []string{"\n ", "\t", "Lyra", " is here"}, "Lyra is here"},
		{"crlf split across deltas", []string{"Name: Lyra\r", "\nRace: Elf"}, "Name: Lyra\nRace: Elf"},
		{"lone cr at delta end", []string{"Name: Lyra\r", "Race: Elf"}, "Name: Lyra\nRace: Elf"},
		{"only escapes", []string{"\x1b[31m", "\x1b[0m"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var d multiverse.DeltaCleaner
			var got strings.Builder
			for _, delta := range tt.deltas {
				got.WriteString(d.Clean(delta))
			}
			assert.Equal(t, tt.want, got.String())
		})
	}
}
