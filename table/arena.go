package table

// arena is a fixed-stride float32 slab. Slot s occupies
// data[s*dim : (s+1)*dim], so sequential scans walk contiguous memory.
// Tombstoned slots keep their bytes until reuse or compaction.
type arena struct {
	dim  int
	data []float32
}

func newArena(dim int) *arena {
	return &arena{dim: dim}
}

// slots returns the number of allocated slots, tombstones included.
func (a *arena) slots() int {
	return len(a.data) / a.dim
}

// at returns the vector in slot s. The slice aliases arena memory;
// callers must copy before handing it out.
func (a *arena) at(s uint32) []float32 {
	start := int(s) * a.dim
	end := start + a.dim
	return a.data[start:end:end]
}

// set copies v into slot s.
func (a *arena) set(s uint32, v []float32) {
	copy(a.data[int(s)*a.dim:], v)
}

// push appends a copy of v as a new slot and returns its index.
func (a *arena) push(v []float32) uint32 {
	s := uint32(a.slots())
	a.data = append(a.data, v...)
	return s
}
