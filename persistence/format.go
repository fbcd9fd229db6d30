// Package persistence implements the single-file binary snapshot format:
// encoding, checksum verification, best-effort recovery and atomic file
// replacement.
//
// A snapshot file is a fixed 69-byte header followed by three blocks:
//
//	offset  size  field
//	0       4     magic "VLDB"
//	4       4     version (uint32, little-endian)
//	8       1     metric tag
//	9       4     dimension (uint32)
//	13      8     live record count (uint64)
//	21      8     modified (int64, unix seconds)
//	29      36    block directory: 3 x { length uint64, crc32 uint32 }
//	              block order: index, vectors, metadata
//	65      4     header crc32 over bytes [0,65)
//	69      ...   index block | vector block | metadata block
//
// All integers are little-endian. The header checksum covers the directory,
// so a damaged directory is indistinguishable from a damaged header and the
// file is rejected. Damage inside a block is survivable; see ReadSnapshot.
package persistence

import "errors"

// Magic identifies snapshot files.
var Magic = [4]byte{'V', 'L', 'D', 'B'}

const (
	// FormatVersion is the current snapshot format version.
	FormatVersion uint32 = 1

	// HeaderSize is the fixed byte length of the snapshot header,
	// including the block directory and the header checksum.
	HeaderSize = 69

	// headerSumOffset is where the header checksum lives; the checksum
	// covers everything before it.
	headerSumOffset = 65

	// IndexTypeFlat tags the only index layout of format version 1.
	// Other values are reserved.
	IndexTypeFlat byte = 0
)

var (
	// ErrBadMagic is returned when a file does not start with Magic.
	ErrBadMagic = errors.New("invalid magic number")
	// ErrUnsupportedVersion is returned for snapshot versions this build
	// cannot read.
	ErrUnsupportedVersion = errors.New("unsupported format version")
	// ErrMalformed wraps structural decode failures in verified data:
	// the checksums pass but the bytes do not parse as a snapshot.
	ErrMalformed = errors.New("malformed snapshot")
	// ErrTruncated is returned when the file ends before the header does.
	// The header checksum cannot be verified, so this is corruption, not a
	// format mismatch.
	ErrTruncated = errors.New("truncated snapshot")
)

// Section names a region of the snapshot file for checksum errors and
// recovery warnings.
type Section uint8

const (
	// SectionHeader is the fixed header including the block directory.
	SectionHeader Section = iota
	// SectionIndex is the id-to-slot index block.
	SectionIndex
	// SectionVectors is the raw float32 arena block.
	SectionVectors
	// SectionMetadata is the per-record document block.
	SectionMetadata
)

// String implements fmt.Stringer.
func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionIndex:
		return "index"
	case SectionVectors:
		return "vectors"
	case SectionMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// Warning reports damage that recovery worked around while loading a
// snapshot. Warnings never fail a load; callers surface them.
type Warning struct {
	Section Section
	Err     error
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return w.Section.String() + " block: " + w.Err.Error()
}
