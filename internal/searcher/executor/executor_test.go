package executor

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// newTestEngine indexes four documents:
//
//	0 white cat fashionable collar   ACTUAL  rating 2
//	1 fluffy cat fluffy tail         ACTUAL  rating 5
//	2 groomed dog expressive eyes    ACTUAL  rating -1
//	3 groomed starling evgeny        BANNED  rating 9
func newTestEngine(t *testing.T) *indexer.Engine {
	t.Helper()
	e, err := indexer.NewEngineFromText("and in on")
	require.NoError(t, err)
	require.NoError(t, e.AddDocument(0, "white cat and fashionable collar", document.StatusActual, []int{8, -3}))
	require.NoError(t, e.AddDocument(1, "fluffy cat fluffy tail", document.StatusActual, []int{7, 2, 7}))
	require.NoError(t, e.AddDocument(2, "groomed dog expressive eyes", document.StatusActual, []int{5, -12, 2, 1}))
	require.NoError(t, e.AddDocument(3, "groomed starling evgeny", document.StatusBanned, []int{9}))
	return e
}

func ids(docs []ranker.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestFindTopDocuments(t *testing.T) {
	x := New(newTestEngine(t))

	docs, err := x.FindTopDocuments("fluffy groomed cat")
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 2}, ids(docs))

	assert.InDelta(t, 0.5*math.Log(4)+0.25*math.Ln2, docs[0].Relevance, 1e-9)
	assert.Equal(t, 5, docs[0].Rating)
	assert.InDelta(t, 0.25*math.Ln2, docs[1].Relevance, 1e-9)
	assert.Equal(t, 2, docs[1].Rating)
	assert.Equal(t, -1, docs[2].Rating)
}

func TestFindTopDocumentsByStatus(t *testing.T) {
	x := New(newTestEngine(t))

	docs, err := x.FindTopDocumentsByStatus("fluffy groomed cat", document.StatusBanned)
	require.NoError(t, err)
	require.Equal(t, []int{3}, ids(docs))
	assert.InDelta(t, math.Ln2/3, docs[0].Relevance, 1e-9)

	docs, err = x.FindTopDocumentsByStatus("fluffy groomed cat", document.StatusRemoved)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFindTopDocumentsFunc(t *testing.T) {
	x := New(newTestEngine(t))
	even := func(id int, _ document.Status, _ int) bool { return id%2 == 0 }

	docs, err := x.FindTopDocumentsFunc("fluffy groomed cat", even)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, ids(docs))
}

func TestFindTopDocumentsMinusTerms(t *testing.T) {
	x := New(newTestEngine(t))

	docs, err := x.FindTopDocuments("fluffy groomed cat -collar")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(docs))

	docs, err = x.FindTopDocuments("cat -cat")
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = x.FindTopDocuments("-cat")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFindTopDocumentsStopWordsNeverMatch(t *testing.T) {
	x := New(newTestEngine(t))

	docs, err := x.FindTopDocuments("and in on")
	require.NoError(t, err)
	assert.Empty(t, docs)

	withStop, err := x.FindTopDocuments("cat in")
	require.NoError(t, err)
	without, err := x.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Equal(t, without, withStop)
}

func TestFindTopDocumentsRepeatedTermsCountOnce(t *testing.T) {
	x := New(newTestEngine(t))

	once, err := x.FindTopDocuments("fluffy")
	require.NoError(t, err)
	twice, err := x.FindTopDocuments("fluffy fluffy")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestFindTopDocumentsInvalidQuery(t *testing.T) {
	x := New(newTestEngine(t))

	for _, q := range []string{"cat -", "--cat", "ca\x01t"} {
		_, err := x.FindTopDocuments(q)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, q)
	}
}

func TestFindTopDocumentsCapsResults(t *testing.T) {
	e, err := indexer.NewEngineFromText("")
	require.NoError(t, err)
	for id := 0; id < 8; id++ {
		require.NoError(t, e.AddDocument(id, "cat", document.StatusActual, []int{id}))
	}
	x := New(e)

	docs, err := x.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Equal(t, []int{7, 6, 5, 4, 3}, ids(docs))
	assert.Len(t, docs, ranker.MaxResultDocumentCount)
}

func TestFindTopDocumentsAfterRemoval(t *testing.T) {
	e := newTestEngine(t)
	x := New(e)

	e.RemoveDocumentWith(execution.Parallel, 1)

	docs, err := x.FindTopDocuments("fluffy groomed cat")
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, ids(docs))
	assert.InDelta(t, 0.25*math.Log(3), docs[0].Relevance, 1e-9)
	assert.InDelta(t, 0.25*math.Log(1.5), docs[1].Relevance, 1e-9)
}

func TestExecutorMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	x := New(newTestEngine(t), WithMetrics(m))

	_, _ = x.FindTopDocuments("cat")
	_, _ = x.FindTopDocuments("nothing")
	_, _ = x.FindTopDocuments("--bad")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("zero_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("error")))
}
