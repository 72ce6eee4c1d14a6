package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
)

func ids(docs []Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		name  string
		docs  []Document
		limit int
		want  []int
	}{
		{
			name: "relevance descending",
			docs: []Document{{ID: 1, Relevance: 0.1}, {ID: 2, Relevance: 0.9}, {ID: 3, Relevance: 0.5}},
			want: []int{2, 3, 1},
		},
		{
			name: "near tie falls back to rating",
			docs: []Document{{ID: 1, Relevance: 0.5, Rating: 1}, {ID: 2, Relevance: 0.5 + 1e-7, Rating: 9}},
			want: []int{2, 1},
		},
		{
			name: "outside epsilon ignores rating",
			docs: []Document{{ID: 1, Relevance: 0.5, Rating: 9}, {ID: 2, Relevance: 0.5 + 1e-5, Rating: 1}},
			want: []int{2, 1},
		},
		{
			name: "full tie keeps input order",
			docs: []Document{{ID: 4, Relevance: 1, Rating: 2}, {ID: 6, Relevance: 1, Rating: 2}, {ID: 8, Relevance: 1, Rating: 2}},
			want: []int{4, 6, 8},
		},
		{
			name:  "truncated",
			docs:  []Document{{ID: 1, Relevance: 1}, {ID: 2, Relevance: 2}, {ID: 3, Relevance: 3}},
			limit: 2,
			want:  []int{3, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Rank(tt.docs, tt.limit)))
		})
	}
}

func TestIDF(t *testing.T) {
	assert.InDelta(t, math.Ln2, IDF(4, 2), 1e-12)
	assert.Equal(t, 0.0, IDF(3, 3))
}

func TestStatusIs(t *testing.T) {
	banned := StatusIs(document.StatusBanned)
	assert.True(t, banned(0, document.StatusBanned, 0))
	assert.False(t, banned(0, document.StatusActual, 0))
}
