package persistence

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/vectorlite/vectorlite/distance"
	"github.com/vectorlite/vectorlite/metadata"
)

// Entry maps a record id to its arena slot.
type Entry struct {
	ID   string
	Slot uint64
}

// MetaEntry attaches a metadata document to a record id.
type MetaEntry struct {
	ID  string
	Doc metadata.Document
}

// Snapshot is the codec's data model: everything the snapshot file holds,
// decoded. The table layer converts between its live state and this form.
//
// Writer invariants, enforced by WriteTo and by the strict decode path:
// Entries and Metadata are sorted by id with no duplicates, every entry slot
// lies inside the vector arena, every metadata id has an entry, and Vectors
// holds capacity x Dimension values (tombstoned slots included).
type Snapshot struct {
	Metric    distance.Metric
	Dimension uint32
	Modified  int64 // unix seconds of the last save
	Entries   []Entry
	Vectors   []float32
	Metadata  []MetaEntry
}

// Capacity returns the number of slots the vector arena holds.
func (s *Snapshot) Capacity() int {
	if s.Dimension == 0 {
		return 0
	}
	return len(s.Vectors) / int(s.Dimension)
}

// WriteTo encodes the snapshot. It matches the io.WriterTo interface.
//
// Encoding is deterministic: the same snapshot state always produces the
// same bytes, modulo the Modified stamp the caller sets.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}

	index := s.encodeIndexBlock()
	vectors := appendFloat32s(make([]byte, 0, len(s.Vectors)*4), s.Vectors)
	meta, err := s.encodeMetaBlock()
	if err != nil {
		return 0, err
	}

	var hdr [HeaderSize]byte
	copy(hdr[0:4], Magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], FormatVersion)
	hdr[8] = byte(s.Metric)
	binary.LittleEndian.PutUint32(hdr[9:13], s.Dimension)
	binary.LittleEndian.PutUint64(hdr[13:21], uint64(len(s.Entries)))
	binary.LittleEndian.PutUint64(hdr[21:29], uint64(s.Modified))

	off := 29
	for _, block := range [][]byte{index, vectors, meta} {
		binary.LittleEndian.PutUint64(hdr[off:off+8], uint64(len(block)))
		binary.LittleEndian.PutUint32(hdr[off+8:off+12], Checksum(block))
		off += 12
	}
	binary.LittleEndian.PutUint32(hdr[headerSumOffset:], Checksum(hdr[:headerSumOffset]))

	cw := &countingWriter{w: w}
	for _, chunk := range [][]byte{hdr[:], index, vectors, meta} {
		if _, err := cw.Write(chunk); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

func (s *Snapshot) validate() error {
	if s.Dimension == 0 {
		return fmt.Errorf("%w: dimension is zero", ErrMalformed)
	}
	if !s.Metric.Valid() {
		return fmt.Errorf("%w: unknown metric %d", ErrMalformed, s.Metric)
	}
	if len(s.Vectors)%int(s.Dimension) != 0 {
		return fmt.Errorf("%w: arena length %d not a multiple of dimension %d", ErrMalformed, len(s.Vectors), s.Dimension)
	}

	capacity := uint64(s.Capacity())
	seenSlots := make(map[uint64]struct{}, len(s.Entries))
	for i, e := range s.Entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry %d has empty id", ErrMalformed, i)
		}
		if i > 0 && e.ID <= s.Entries[i-1].ID {
			return fmt.Errorf("%w: entries not sorted by id at %d", ErrMalformed, i)
		}
		if e.Slot >= capacity {
			return fmt.Errorf("%w: entry %q slot %d out of range (capacity %d)", ErrMalformed, e.ID, e.Slot, capacity)
		}
		if _, dup := seenSlots[e.Slot]; dup {
			return fmt.Errorf("%w: slot %d mapped twice", ErrMalformed, e.Slot)
		}
		seenSlots[e.Slot] = struct{}{}
	}

	for i, me := range s.Metadata {
		if i > 0 && me.ID <= s.Metadata[i-1].ID {
			return fmt.Errorf("%w: metadata not sorted by id at %d", ErrMalformed, i)
		}
		if !s.hasEntry(me.ID) {
			return fmt.Errorf("%w: metadata for unknown id %q", ErrMalformed, me.ID)
		}
	}
	return nil
}

func (s *Snapshot) hasEntry(id string) bool {
	i := sort.Search(len(s.Entries), func(i int) bool { return s.Entries[i].ID >= id })
	return i < len(s.Entries) && s.Entries[i].ID == id
}

func (s *Snapshot) encodeIndexBlock() []byte {
	buf := make([]byte, 0, 2+len(s.Entries)*24)
	buf = append(buf, IndexTypeFlat)
	buf = binary.AppendUvarint(buf, 0) // flat carries no parameters
	for _, e := range s.Entries {
		buf = appendString(buf, e.ID)
		buf = binary.LittleEndian.AppendUint64(buf, e.Slot)
	}
	return buf
}

func (s *Snapshot) encodeMetaBlock() ([]byte, error) {
	buf := make([]byte, 0, 1+len(s.Metadata)*32)
	buf = binary.AppendUvarint(buf, uint64(len(s.Metadata)))
	for _, me := range s.Metadata {
		doc, err := me.Doc.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = appendString(buf, me.ID)
		buf = binary.AppendUvarint(buf, uint64(len(doc)))
		buf = append(buf, doc...)
	}
	return buf, nil
}

// ReadSnapshot decodes a snapshot file.
//
// The header (including the block directory) must verify; a damaged header
// is unrecoverable. Blocks whose checksum verifies are parsed strictly and
// any structural failure is an error. Blocks whose checksum does not verify
// are recovered best-effort: the index block is re-parsed entry by entry
// until the first structural failure, dropping entries with empty ids,
// out-of-range slots or duplicates; the vector block is accepted as-is;
// metadata documents that no longer parse or no longer have a record are
// dropped. Each recovery emits a Warning. Warnings never fail the load.
func ReadSnapshot(data []byte) (*Snapshot, []Warning, error) {
	hdr, blocks, err := parseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning

	// Vector block. The directory is covered by the header checksum, so a
	// length that is not a whole number of vectors was written that way.
	if uint64(len(blocks[1]))%(4*uint64(hdr.dim)) != 0 {
		return nil, nil, fmt.Errorf("%w: vector block length %d not a multiple of record size", ErrMalformed, len(blocks[1]))
	}
	if sum := Checksum(blocks[1]); sum != hdr.dir[1].sum {
		// Every bit pattern decodes as a float; keep the payload.
		warnings = append(warnings, Warning{
			Section: SectionVectors,
			Err:     &ChecksumMismatchError{Section: SectionVectors, Expected: hdr.dir[1].sum, Actual: sum},
		})
	}
	vectors, err := parseFloat32s(blocks[1])
	if err != nil {
		return nil, nil, err
	}
	capacity := uint64(len(vectors)) / uint64(hdr.dim)

	// Index block.
	idxClean := Checksum(blocks[0]) == hdr.dir[0].sum
	var entries []Entry
	if idxClean {
		entries, err = parseIndexBlock(blocks[0], hdr.count, capacity)
		if err != nil {
			return nil, nil, err
		}
	} else {
		entries = recoverIndexBlock(blocks[0], capacity)
		cme := &ChecksumMismatchError{Section: SectionIndex, Expected: hdr.dir[0].sum, Actual: Checksum(blocks[0])}
		warnings = append(warnings, Warning{
			Section: SectionIndex,
			Err:     fmt.Errorf("%w; recovered %d of %d records", cme, len(entries), hdr.count),
		})
	}

	// Metadata block.
	metaClean := Checksum(blocks[2]) == hdr.dir[2].sum
	var metas []MetaEntry
	if metaClean {
		metas, err = parseMetaBlock(blocks[2])
		if err != nil {
			return nil, nil, err
		}
	} else {
		var dropped int
		metas, dropped = recoverMetaBlock(blocks[2])
		cme := &ChecksumMismatchError{Section: SectionMetadata, Expected: hdr.dir[2].sum, Actual: Checksum(blocks[2])}
		warnings = append(warnings, Warning{
			Section: SectionMetadata,
			Err:     fmt.Errorf("%w; dropped %d documents", cme, dropped),
		})
	}

	// Documents must attach to a surviving record. With clean checksums an
	// orphan is a writer bug; after recovery it is expected debris.
	snap := &Snapshot{
		Metric:    hdr.metric,
		Dimension: hdr.dim,
		Modified:  hdr.modified,
		Entries:   entries,
		Vectors:   vectors,
	}
	orphans := 0
	kept := metas[:0]
	for _, me := range metas {
		if !snap.hasEntry(me.ID) {
			if idxClean && metaClean {
				return nil, nil, fmt.Errorf("%w: metadata for unknown id %q", ErrMalformed, me.ID)
			}
			orphans++
			continue
		}
		kept = append(kept, me)
	}
	if orphans > 0 {
		warnings = append(warnings, Warning{
			Section: SectionMetadata,
			Err:     fmt.Errorf("dropped %d documents without a surviving record", orphans),
		})
	}
	snap.Metadata = kept

	return snap, warnings, nil
}

// DecodeStrict decodes a snapshot and refuses recovery: any warning is an
// error. Save verification re-reads the temp file through this path.
func DecodeStrict(data []byte) (*Snapshot, error) {
	snap, warnings, err := ReadSnapshot(data)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, warnings[0])
	}
	return snap, nil
}

type header struct {
	metric   distance.Metric
	dim      uint32
	count    uint64
	modified int64
	dir      [3]blockInfo
}

type blockInfo struct {
	length uint64
	sum    uint32
}

func parseHeader(data []byte) (*header, [3][]byte, error) {
	var blocks [3][]byte

	if len(data) < 4 || [4]byte(data[0:4]) != Magic {
		return nil, blocks, ErrBadMagic
	}
	if len(data) >= 8 {
		if v := binary.LittleEndian.Uint32(data[4:8]); v != FormatVersion {
			return nil, blocks, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, v)
		}
	}
	if len(data) < HeaderSize {
		return nil, blocks, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	if expected, actual := binary.LittleEndian.Uint32(data[headerSumOffset:HeaderSize]), Checksum(data[:headerSumOffset]); expected != actual {
		return nil, blocks, &ChecksumMismatchError{Section: SectionHeader, Expected: expected, Actual: actual}
	}

	hdr := &header{
		metric:   distance.Metric(data[8]),
		dim:      binary.LittleEndian.Uint32(data[9:13]),
		count:    binary.LittleEndian.Uint64(data[13:21]),
		modified: int64(binary.LittleEndian.Uint64(data[21:29])),
	}
	if !hdr.metric.Valid() {
		return nil, blocks, fmt.Errorf("%w: unknown metric tag %d", ErrMalformed, data[8])
	}
	if hdr.dim == 0 {
		return nil, blocks, fmt.Errorf("%w: dimension is zero", ErrMalformed)
	}

	body := uint64(len(data) - HeaderSize)
	var total uint64
	off := 29
	for i := range hdr.dir {
		hdr.dir[i].length = binary.LittleEndian.Uint64(data[off : off+8])
		hdr.dir[i].sum = binary.LittleEndian.Uint32(data[off+8 : off+12])
		if hdr.dir[i].length > body {
			return nil, blocks, fmt.Errorf("%w: %s block length %d exceeds file size", ErrMalformed, Section(i+1), hdr.dir[i].length)
		}
		total += hdr.dir[i].length
		off += 12
	}
	if total != body {
		return nil, blocks, fmt.Errorf("%w: directory totals %d bytes, file holds %d", ErrMalformed, total, body)
	}

	at := uint64(HeaderSize)
	for i := range blocks {
		blocks[i] = data[at : at+hdr.dir[i].length]
		at += hdr.dir[i].length
	}
	return hdr, blocks, nil
}

// parseIndexBlock is the strict index decoder: exactly count entries, sorted
// by id, no duplicates, every slot inside the arena, nothing left over.
func parseIndexBlock(block []byte, count, capacity uint64) ([]Entry, error) {
	if len(block) == 0 {
		return nil, fmt.Errorf("%w: empty index block", ErrMalformed)
	}
	if block[0] != IndexTypeFlat {
		return nil, fmt.Errorf("%w: unknown index type %d", ErrMalformed, block[0])
	}
	rest := block[1:]
	params, w := binary.Uvarint(rest)
	if w <= 0 {
		return nil, fmt.Errorf("%w: invalid index parameter length", ErrMalformed)
	}
	if params != 0 {
		return nil, fmt.Errorf("%w: flat index carries %d parameter bytes", ErrMalformed, params)
	}
	rest = rest[w:]

	// Every entry takes at least 10 bytes (1-byte id + slot).
	if count > uint64(len(rest))/10 {
		return nil, fmt.Errorf("%w: entry count %d exceeds index block size", ErrMalformed, count)
	}

	entries := make([]Entry, 0, count)
	seenSlots := make(map[uint64]struct{}, count)
	var prev string
	for i := uint64(0); i < count; i++ {
		id, r, err := parseString(rest)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, err)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: index entry %d has empty id", ErrMalformed, i)
		}
		if i > 0 && id <= prev {
			return nil, fmt.Errorf("%w: index entries not sorted by id at %d", ErrMalformed, i)
		}
		if len(r) < 8 {
			return nil, fmt.Errorf("%w: index entry %d truncated", ErrMalformed, i)
		}
		slot := binary.LittleEndian.Uint64(r)
		rest = r[8:]
		if slot >= capacity {
			return nil, fmt.Errorf("%w: id %q slot %d out of range (capacity %d)", ErrMalformed, id, slot, capacity)
		}
		if _, dup := seenSlots[slot]; dup {
			return nil, fmt.Errorf("%w: slot %d mapped twice", ErrMalformed, slot)
		}
		seenSlots[slot] = struct{}{}
		entries = append(entries, Entry{ID: id, Slot: slot})
		prev = id
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after index entries", ErrMalformed, len(rest))
	}
	return entries, nil
}

// recoverIndexBlock re-parses a damaged index block. It keeps every entry up
// to the first structural failure, dropping those that cannot be valid. The
// type tag is advisory here: whatever it claims, the flat layout is the only
// layout of version 1.
func recoverIndexBlock(block []byte, capacity uint64) []Entry {
	if len(block) < 2 {
		return nil
	}
	rest := block[1:]
	params, w := binary.Uvarint(rest)
	if w <= 0 {
		return nil
	}
	rest = rest[w:]
	if params > 0 {
		if params > uint64(len(rest)) {
			return nil
		}
		rest = rest[params:]
	}

	var entries []Entry
	seenIDs := make(map[string]struct{})
	seenSlots := make(map[uint64]struct{})
	for len(rest) > 0 {
		id, r, err := parseString(rest)
		if err != nil || len(r) < 8 {
			break
		}
		slot := binary.LittleEndian.Uint64(r)
		rest = r[8:]

		if id == "" || slot >= capacity {
			continue
		}
		if _, dup := seenIDs[id]; dup {
			continue
		}
		if _, dup := seenSlots[slot]; dup {
			continue
		}
		seenIDs[id] = struct{}{}
		seenSlots[slot] = struct{}{}
		entries = append(entries, Entry{ID: id, Slot: slot})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// parseMetaBlock is the strict metadata decoder: sorted unique ids, every
// document parses, nothing left over.
func parseMetaBlock(block []byte) ([]MetaEntry, error) {
	count, w := binary.Uvarint(block)
	if w <= 0 {
		return nil, fmt.Errorf("%w: invalid metadata entry count", ErrMalformed)
	}
	rest := block[w:]
	// Every entry takes at least 3 bytes (1-byte id plus framing).
	if count > uint64(len(rest))/3 {
		return nil, fmt.Errorf("%w: metadata count %d exceeds block size", ErrMalformed, count)
	}

	metas := make([]MetaEntry, 0, count)
	var prev string
	for i := uint64(0); i < count; i++ {
		id, r, err := parseString(rest)
		if err != nil {
			return nil, fmt.Errorf("metadata entry %d: %w", i, err)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: metadata entry %d has empty id", ErrMalformed, i)
		}
		if i > 0 && id <= prev {
			return nil, fmt.Errorf("%w: metadata not sorted by id at %d", ErrMalformed, i)
		}
		docLen, w := binary.Uvarint(r)
		if w <= 0 {
			return nil, fmt.Errorf("%w: metadata %q: invalid document length", ErrMalformed, id)
		}
		r = r[w:]
		if uint64(len(r)) < docLen {
			return nil, fmt.Errorf("%w: metadata %q: document truncated", ErrMalformed, id)
		}
		var doc metadata.Document
		if err := doc.UnmarshalBinary(r[:docLen]); err != nil {
			return nil, fmt.Errorf("%w: metadata %q: %v", ErrMalformed, id, err)
		}
		rest = r[docLen:]
		metas = append(metas, MetaEntry{ID: id, Doc: doc})
		prev = id
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after metadata entries", ErrMalformed, len(rest))
	}
	return metas, nil
}

// recoverMetaBlock re-parses a damaged metadata block. The per-document
// length prefix frames each entry, so a document that no longer parses is
// skipped without losing the ones after it. Framing damage ends the scan.
func recoverMetaBlock(block []byte) (metas []MetaEntry, dropped int) {
	count, w := binary.Uvarint(block)
	if w <= 0 {
		return nil, 0
	}
	rest := block[w:]

	seen := make(map[string]struct{})
	for i := uint64(0); i < count && len(rest) > 0; i++ {
		id, r, err := parseString(rest)
		if err != nil {
			break
		}
		docLen, w := binary.Uvarint(r)
		if w <= 0 {
			break
		}
		r = r[w:]
		if uint64(len(r)) < docLen {
			break
		}
		docBytes := r[:docLen]
		rest = r[docLen:]

		if id == "" {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		var doc metadata.Document
		if err := doc.UnmarshalBinary(docBytes); err != nil {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		metas = append(metas, MetaEntry{ID: id, Doc: doc})
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	return metas, dropped
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
