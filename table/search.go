package table

import (
	"math"

	"github.com/vectorlite/vectorlite/internal/queue"
	"github.com/vectorlite/vectorlite/metadata"
)

// Result is one search hit. Metadata is a copy and nil for records stored
// without a document.
type Result struct {
	ID       string
	Score    float64
	Metadata metadata.Document
}

// Search returns the k best-scoring records for query under the table's
// metric, best first, exact score ties broken by ascending id. Fewer than k
// records are returned when fewer match.
//
// A non-nil pred restricts candidates to records whose document matches;
// records stored without a document never match. When pred is a
// *metadata.FilterSet the posting lists answer it where they can, otherwise
// every live record is evaluated.
//
// Search never returns NaN scores: a NaN ranks as the metric's worst.
func (t *Table) Search(query []float32, k int, pred metadata.Predicate) ([]Result, error) {
	if len(query) != t.dim {
		return nil, &DimensionMismatchError{Expected: t.dim, Actual: len(query)}
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if fs, ok := pred.(*metadata.FilterSet); ok && fs == nil {
		pred = nil
	}

	q := queue.NewTopK(k, t.metric.Ascending())

	if fs, ok := pred.(*metadata.FilterSet); ok {
		if bm, ok := t.meta.Compile(fs); ok {
			// Posting lists only hold slots with documents, so the
			// predicate is already satisfied.
			it := bm.Iterator()
			for it.HasNext() {
				t.offer(q, it.Next(), query)
			}
			return t.results(q), nil
		}
	}

	for slot, id := range t.ids {
		if id == "" {
			continue
		}
		if pred != nil {
			doc, ok := t.meta.Get(uint32(slot))
			if !ok || !pred.Matches(doc) {
				continue
			}
		}
		t.offer(q, uint32(slot), query)
	}
	return t.results(q), nil
}

func (t *Table) offer(q *queue.TopK, slot uint32, query []float32) {
	score := t.metric.Score(query, t.arena.at(slot))
	if math.IsNaN(score) {
		score = t.metric.Worst()
	}
	q.Offer(queue.Item{ID: t.ids[slot], Slot: slot, Score: score})
}

func (t *Table) results(q *queue.TopK) []Result {
	items := q.Items()
	results := make([]Result, len(items))
	for i, it := range items {
		doc, _ := t.meta.Get(it.Slot)
		results[i] = Result{
			ID:       it.ID,
			Score:    it.Score,
			Metadata: metadata.CloneIfNeeded(doc),
		}
	}
	return results
}
