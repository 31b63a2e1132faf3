package multiverse

import (
	"strconv"
	"strings"
)

// Assemble substitutes details into the universe template. Placeholder {i}
// receives details[i-1]. Substitution is a single pass, so a detail that
// itself contains "{2}" is copied literally. Callers validate first;
// placeholders without a matching detail are left untouched.
func Assemble(u Universe, details []string) string {
	pairs := make([]string, 0, 2*len(details))
	for i, d := range details {
		pairs = append(pairs, "{"+strconv.Itoa(i+1)+"}", d)
	}
	return strings.NewReplacer(pairs...).Replace(u.Template)
}
