// Package queue provides the bounded candidate heap used by top-k search.
package queue

// Item is one search candidate.
type Item struct {
	ID    string
	Slot  uint32
	Score float64
}

// TopK keeps the k best candidates seen so far.
//
// The heap root is the current worst candidate, so a full heap replaces its
// root whenever a better candidate arrives. "Better" follows the metric
// polarity (ascending = lower score wins); exact score ties rank the smaller
// id first, which keeps result order deterministic.
type TopK struct {
	k         int
	ascending bool
	items     []Item
}

// NewTopK returns a bounded heap holding at most k items.
func NewTopK(k int, ascending bool) *TopK {
	cap := k
	if cap > 1024 {
		cap = 1024
	}
	return &TopK{
		k:         k,
		ascending: ascending,
		items:     make([]Item, 0, cap),
	}
}

// worse reports whether a ranks after b.
func (q *TopK) worse(a, b Item) bool {
	if a.Score != b.Score {
		if q.ascending {
			return a.Score > b.Score
		}
		return a.Score < b.Score
	}
	return a.ID > b.ID
}

// Offer considers a candidate, keeping it only if it beats the current worst.
func (q *TopK) Offer(it Item) {
	if len(q.items) < q.k {
		q.items = append(q.items, it)
		q.siftUp(len(q.items) - 1)
		return
	}
	if !q.worse(q.items[0], it) {
		return
	}
	q.items[0] = it
	q.siftDown(0)
}

// Len returns the number of held candidates.
func (q *TopK) Len() int { return len(q.items) }

// Items drains the heap and returns candidates ranked best first.
// The queue must not be reused afterwards.
func (q *TopK) Items() []Item {
	out := make([]Item, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		out[i] = q.popWorst()
	}
	return out
}

func (q *TopK) popWorst() Item {
	n := len(q.items)
	root := q.items[0]
	last := q.items[n-1]
	q.items[n-1] = Item{}
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root
}

// less orders the heap with the worst candidate at the root.
func (q *TopK) less(i, j int) bool {
	return q.worse(q.items[i], q.items[j])
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		if r := l + 1; r < n && q.less(r, l) {
			worst = r
		}
		if !q.less(worst, i) {
			return
		}
		q.items[i], q.items[worst] = q.items[worst], q.items[i]
		i = worst
	}
}
