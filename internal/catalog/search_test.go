package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Café Tour", "cafe tour"},
		{"  Sunset!!  Beach__Day ", "sunset beach day"},
		{"ÉTÉ 2024", "ete 2024"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeTitle(tt.in), "input %q", tt.in)
	}
}

func TestRank(t *testing.T) {
	records := []Record{
		{ID: 1, Title: "Cat jumps over fence"},
		{ID: 2, Title: "Morning yoga routine"},
		{ID: 3, Title: "Café cat compilation"},
	}

	matches := Rank(records, "cafe cat")
	require.NotEmpty(t, matches)
	assert.Equal(t, int64(3), matches[0].Record.ID)
	assert.Equal(t, 1.0, matches[0].Score)

	for _, m := range matches {
		assert.NotEqual(t, int64(2), m.Record.ID, "unrelated title should not match")
	}
}

func TestRank_Typo(t *testing.T) {
	records := []Record{{ID: 1, Title: "Sunset timelapse"}, {ID: 2, Title: "Morning run"}}

	matches := Rank(records, "sunet")
	require.NotEmpty(t, matches)
	assert.Equal(t, int64(1), matches[0].Record.ID)
}

func TestRank_EmptyQuery(t *testing.T) {
	assert.Nil(t, Rank([]Record{{ID: 1, Title: "x"}}, " !! "))
}
