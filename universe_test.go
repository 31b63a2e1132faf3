package multiverse_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/fwojciec/multiverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseIDs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"fantasy", "sci-fi", "horror", "cyberpunk", "anime", "superhero"}, multiverse.UniverseIDs())
}

func TestUniverses_ExamplesMatchFields(t *testing.T) {
	t.Parallel()
	for _, u := range multiverse.Universes() {
		t.Run(u.ID, func(t *testing.T) {
			t.Parallel()
			require.NotEmpty(t, u.Fields)
			assert.Len(t, u.Examples, len(u.Fields))
		})
	}
}

func TestUniverses_TemplateHasOnePlaceholderPerField(t *testing.T) {
	t.Parallel()
	for _, u := range multiverse.Universes() {
		t.Run(u.ID, func(t *testing.T) {
			t.Parallel()
			for i := range u.Fields {
				placeholder := "{" + strconv.Itoa(i+1) + "}"
				assert.Equal(t, 1, strings.Count(u.Template, placeholder), "placeholder %s", placeholder)
			}
			assert.NotContains(t, u.Template, "{"+strconv.Itoa(len(u.Fields)+1)+"}")
		})
	}
}

func TestLookupUniverse_Fantasy(t *testing.T) {
	t.Parallel()
	u, err := multiverse.LookupUniverse("fantasy")
	require.NoError(t, err)
	assert.Equal(t, "fantasy", u.ID)
	assert.Equal(t, []string{"Race", "Class", "Alignment", "Kingdom"}, u.Fields)
}

func TestLookupUniverse_Unknown(t *testing.T) {
	t.Parallel()
	_, err := multiverse.LookupUniverse("atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, multiverse.ErrUnknownUniverse))

	var uerr *multiverse.UnknownUniverseError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "atlantis", uerr.ID)
	assert.Equal(t, multiverse.UniverseIDs(), uerr.Valid)
	assert.Len(t, uerr.Valid, 6)
	assert.Contains(t, err.Error(), "atlantis")
	assert.Contains(t, err.Error(), "superhero")
}

func TestLookupUniverse_IsCaseSensitive(t *testing.T) {
	t.Parallel()
	_, err := multiverse.LookupUniverse("Fantasy")
	assert.ErrorIs(t, err, multiverse.ErrUnknownUniverse)
}

func TestLookupUniverse_ReturnsCopy(t *testing.T) {
	t.Parallel()
	u, err := multiverse.LookupUniverse("horror")
	require.NoError(t, err)
	u.Fields[0] = "mutated"
	u.Examples[0] = "mutated"

	again, err := multiverse.LookupUniverse("horror")
	require.NoError(t, err)
	assert.Equal(t, "Occupation", again.Fields[0])
	assert.Equal(t, "Journalist", again.Examples[0])
}
