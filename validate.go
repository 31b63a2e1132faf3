package multiverse

import (
	"fmt"
	"strings"
)

// Validate resolves universeID and checks that details supplies exactly one
// value per required field. It returns the resolved universe on success.
func Validate(universeID string, details []string) (Universe, error) {
	u, err := LookupUniverse(universeID)
	if err != nil {
		return Universe{}, err
	}
	if len(details) != len(u.Fields) {
		return Universe{}, &DetailCountError{
			Universe: u.ID,
			Expected: len(u.Fields),
			Actual:   len(details),
			Fields:   u.Fields,
		}
	}
	return u, nil
}

// NormalizeDetails trims surrounding whitespace from every detail and rejects
// blank ones. The input slice is not modified.
func NormalizeDetails(details []string) ([]string, error) {
	out := make([]string, len(details))
	for i, d := range details {
		d = strings.TrimSpace(d)
		if d == "" {
			return nil, fmt.Errorf("detail %d is blank: %w", i+1, ErrValidation)
		}
		out[i] = d
	}
	return out, nil
}
