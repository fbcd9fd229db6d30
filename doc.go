// Package vectorlite provides an embedded, single-file vector database.
//
// A database is one file on disk and one table in memory: string-keyed
// records of fixed-dimension float32 vectors with optional metadata
// documents. Search is exact brute-force top-k under a per-database
// similarity metric (cosine, L2 or dot), with optional metadata filtering
// backed by an inverted index.
//
// # Quick start
//
//	db, err := vectorlite.Open("vectors.vldb",
//	    vectorlite.WithDimension(128),
//	    vectorlite.WithMetric(distance.Cosine),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.Insert("doc-1", embedding, metadata.Document{
//	    "category": metadata.String("tech"),
//	    "year":     metadata.Int(2024),
//	})
//
//	results, err := db.Search(query, 10, vectorlite.WithFilter(
//	    metadata.NewFilterSet(metadata.Filter{
//	        Key: "category", Operator: metadata.OpEqual, Value: metadata.String("tech"),
//	    }),
//	))
//
// # Durability model
//
// Mutations live in memory until Flush or Close writes the file atomically
// (write to a temp file, verify, rename); WithAutoFlush persists after every
// mutation instead. Opening a file with a damaged header fails with
// ErrCorrupt, while damage inside a block is repaired best-effort and
// reported through Warnings.
//
// A DB instance is not safe for concurrent use; callers that share one
// across goroutines must serialize access.
package vectorlite
