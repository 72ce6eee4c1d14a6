package executor

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

// ProcessQueries runs FindTopDocuments for every query concurrently. Result i
// belongs to queries[i]. The first malformed query fails the whole batch.
func (e *Executor) ProcessQueries(queries []string) ([][]ranker.Document, error) {
	results, err := execution.Map(execution.Parallel, queries, func(i int, query string) ([]ranker.Document, error) {
		docs, err := e.FindTopDocuments(query)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("batch processed", "queries", len(queries))
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries in query order, then rank
// order.
func (e *Executor) ProcessQueriesJoined(queries []string) ([]ranker.Document, error) {
	perQuery, err := e.ProcessQueries(queries)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range perQuery {
		total += len(docs)
	}
	joined := make([]ranker.Document, 0, total)
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
