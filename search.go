package vectorlite

import (
	"time"

	"github.com/vectorlite/vectorlite/metadata"
)

type searchOptions struct {
	pred metadata.Predicate
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

// WithFilter restricts search candidates to records whose metadata matches
// pred. Records stored without metadata never match a non-nil predicate.
func WithFilter(pred metadata.Predicate) SearchOption {
	return func(o *searchOptions) {
		o.pred = pred
	}
}

// Search returns the k best-scoring records for query, best first, exact
// score ties broken by ascending id. Fewer than k results are returned when
// fewer records match. Repeated calls on unchanged state return identical
// results.
func (db *DB) Search(query []float32, k int, optFns ...SearchOption) ([]SearchResult, error) {
	start := time.Now()
	var so searchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&so)
		}
	}
	results, err := db.search(query, k, so.pred)
	db.metrics.RecordSearch(k, time.Since(start), err)
	db.logger.LogSearch(k, len(results), err)
	return results, err
}

func (db *DB) search(query []float32, k int, pred metadata.Predicate) ([]SearchResult, error) {
	if db.closed {
		return nil, ErrClosed
	}
	results, err := db.table.Search(query, k, pred)
	if err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

// Get returns the record with the given id, or ErrNotFound.
func (db *DB) Get(id string) (Record, error) {
	if db.closed {
		return Record{}, ErrClosed
	}
	vector, doc, err := db.table.Get(id)
	if err != nil {
		return Record{}, translateError(err)
	}
	return Record{ID: id, Vector: vector, Metadata: doc}, nil
}
