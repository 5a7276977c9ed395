package copyright

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", "")
	require.Error(t, err)
}

func TestPromptIncludesSongFields(t *testing.T) {
	p := Prompt(LookupInput{
		Title:    "Bolero",
		Composer: "Maurice Ravel",
		Lyricist: "n/a",
		Arranger: "Someone",
	})
	assert.Contains(t, p, "Song Title: Bolero")
	assert.Contains(t, p, "Composer: Maurice Ravel")
	assert.Contains(t, p, "Lyricist: n/a")
	assert.Contains(t, p, "Arranger: Someone")
	assert.Contains(t, p, "music copyright law")
}
