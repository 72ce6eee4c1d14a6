package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/stopwords"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func TestParse(t *testing.T) {
	stop, err := stopwords.FromText("in the")
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		dedupe bool
		plus   []string
		minus  []string
	}{
		{"empty", "", true, nil, nil},
		{"plus and minus", "cat -dog", true, []string{"cat"}, []string{"dog"}},
		{"stop words dropped", "cat in the hat", true, []string{"cat", "hat"}, nil},
		{"minus stop word dropped", "cat -in", true, []string{"cat"}, nil},
		{"dedupe sorts", "rat cat -eel cat -ant rat", true, []string{"cat", "rat"}, []string{"ant", "eel"}},
		{"without dedupe keeps order", "rat cat cat", false, []string{"rat", "cat", "cat"}, nil},
		{"inner dash is literal", "cat-dog -x-y", true, []string{"cat-dog"}, []string{"x-y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query, stop, tt.dedupe)
			require.NoError(t, err)
			assert.Equal(t, tt.plus, q.PlusTerms)
			assert.Equal(t, tt.minus, q.MinusTerms)
			assert.Equal(t, tt.query, q.RawQuery)
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bare minus", "cat -"},
		{"double minus", "--cat"},
		{"triple minus", "---cat"},
		{"control character", "cat \x07dog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query, stopwords.Set{}, true)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}
