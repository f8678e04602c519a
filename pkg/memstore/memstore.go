// Package memstore defines the boundary to the vector-indexed document store
// that persists memory records. The store itself is an external collaborator;
// this package pins down the operations mnemo relies on (insert, fetch by id,
// partial update, delete, filtered top-k query, flush, stats) and the fixed
// record schema, with embedded engine implementations in subpackages.
package memstore

import "context"

// CollectionName is the name every engine uses for the memories collection.
const CollectionName = "memories"

// Record is a memory document as persisted by an engine. The schema is fixed:
// engines must round-trip every field.
type Record struct {
	ID          string
	Content     string
	Category    string
	Tags        []string
	Source      string
	CreatedAt   int64
	UpdatedAt   int64
	Importance  float64
	AccessCount int32
	Embedding   []float32
}

// Patch is a partial update to an existing record. Nil pointer fields are
// left untouched; a non-nil Embedding replaces the stored vector.
type Patch struct {
	ID          string
	Content     *string
	Category    *string
	Tags        *[]string
	Source      *string
	UpdatedAt   *int64
	Importance  *float64
	AccessCount *int32
	Embedding   []float32
}

// Match is a query result with its similarity score (higher = more similar).
type Match struct {
	Record

	Score float32
}

// Stats reports aggregate collection statistics.
type Stats struct {
	// Count is the number of documents in the collection.
	Count int64
}

// Collection handles storage and retrieval of memory records.
type Collection interface {
	// Insert stores new records.
	Insert(ctx context.Context, recs []Record) error

	// Fetch retrieves records by id. Ids with no matching record are
	// silently absent from the result.
	Fetch(ctx context.Context, ids []string) ([]Record, error)

	// Update applies a partial update. Returns ErrNotFound if the id does
	// not exist.
	Update(ctx context.Context, patch Patch) error

	// Delete removes records by id. Returns ErrNotFound if none of the
	// ids existed.
	Delete(ctx context.Context, ids []string) error

	// Query runs a filtered top-k similarity search against the embedding
	// vector. A nil filter means unconstrained.
	Query(ctx context.Context, embedding []float32, topK int, filter *Filter) ([]Match, error)

	// Flush makes prior writes durable.
	Flush(ctx context.Context) error

	// Stats returns aggregate collection statistics.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the collection.
	Close() error
}
