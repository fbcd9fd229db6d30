// Package metadata provides typed metadata documents, filter predicates and a
// Roaring Bitmap inverted index for filtered vector search.
//
// Documents are maps of string keys to tagged values. String values are
// interned with Go's unique package, so repetitive metadata (categories,
// status flags) shares storage across records.
//
// Example:
//
//	doc := metadata.Document{
//	    "category":  metadata.String("tech"),
//	    "year":      metadata.Int(2024),
//	    "published": metadata.Bool(true),
//	}
//
//	pred := metadata.NewFilterSet(
//	    metadata.Filter{Key: "category", Operator: metadata.OpEqual, Value: metadata.String("tech")},
//	    metadata.Filter{Key: "year", Operator: metadata.OpGreaterEqual, Value: metadata.Int(2023)},
//	)
//
// Equality and membership filters compile to bitmap intersections; everything
// else is evaluated per document during the scan.
package metadata
