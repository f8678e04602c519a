// Package chromem provides a pure-Go memstore engine backed by chromem-go,
// for environments where cgo (and thus the sqlite-vec engine) is unavailable.
// Record fields are carried in document metadata as strings.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/mnemoware/mnemo/pkg/memstore"
)

// Collection implements memstore.Collection using chromem-go.
type Collection struct {
	db     *chromemgo.DB
	col    *chromemgo.Collection
	logger *slog.Logger
}

// Config holds configuration for the chromem engine.
type Config struct {
	// Path is the directory chromem persists the database under.
	Path string
}

// New opens (creating if necessary) a persistent memories collection.
func New(c Config, logger *slog.Logger) (*Collection, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("%w: database path is required", memstore.ErrConnection)
	}

	db, err := chromemgo.NewPersistentDB(c.Path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: opening chromem database: %v", memstore.ErrConnection, err)
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	col, err := db.GetOrCreateCollection(memstore.CollectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening collection: %v", memstore.ErrConnection, err)
	}

	logger.Debug("chromem collection opened", "path", c.Path, "documents", col.Count())

	return &Collection{db: db, col: col, logger: logger}, nil
}

func toDocument(rec memstore.Record) (chromemgo.Document, error) {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return chromemgo.Document{}, fmt.Errorf("marshaling tags: %w", err)
	}

	return chromemgo.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"category":     rec.Category,
			"tags":         string(tagsJSON),
			"source":       rec.Source,
			"created_at":   strconv.FormatInt(rec.CreatedAt, 10),
			"updated_at":   strconv.FormatInt(rec.UpdatedAt, 10),
			"importance":   strconv.FormatFloat(rec.Importance, 'g', -1, 64),
			"access_count": strconv.FormatInt(int64(rec.AccessCount), 10),
		},
	}, nil
}

func toRecord(id, content string, embedding []float32, meta map[string]string) memstore.Record {
	rec := memstore.Record{
		ID:        id,
		Content:   content,
		Category:  meta["category"],
		Source:    meta["source"],
		Embedding: embedding,
	}
	var tags []string
	if err := json.Unmarshal([]byte(meta["tags"]), &tags); err == nil {
		rec.Tags = tags
	}
	rec.CreatedAt, _ = strconv.ParseInt(meta["created_at"], 10, 64)
	rec.UpdatedAt, _ = strconv.ParseInt(meta["updated_at"], 10, 64)
	rec.Importance, _ = strconv.ParseFloat(meta["importance"], 64)
	ac, _ := strconv.ParseInt(meta["access_count"], 10, 32)
	rec.AccessCount = int32(ac)
	return rec
}

// Insert stores new records.
func (c *Collection) Insert(ctx context.Context, recs []memstore.Record) error {
	for _, rec := range recs {
		if _, err := c.col.GetByID(ctx, rec.ID); err == nil {
			return fmt.Errorf("%w: record %s already exists", memstore.ErrInsert, rec.ID)
		}

		doc, err := toDocument(rec)
		if err != nil {
			return fmt.Errorf("%w: record %s: %v", memstore.ErrInsert, rec.ID, err)
		}
		if err := c.col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("%w: adding record %s: %v", memstore.ErrInsert, rec.ID, err)
		}
	}

	c.logger.Debug("inserted records", "count", len(recs))

	return nil
}

// Fetch retrieves records by their ids. Unknown ids are skipped.
func (c *Collection) Fetch(ctx context.Context, ids []string) ([]memstore.Record, error) {
	var recs []memstore.Record
	for _, id := range ids {
		doc, err := c.col.GetByID(ctx, id)
		if err != nil {
			continue
		}
		recs = append(recs, toRecord(doc.ID, doc.Content, doc.Embedding, doc.Metadata))
	}
	return recs, nil
}

// Update applies a partial update to one record. chromem has no partial
// update, so the stored document is read, merged, and re-added under the
// same id.
func (c *Collection) Update(ctx context.Context, patch memstore.Patch) error {
	doc, err := c.col.GetByID(ctx, patch.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", memstore.ErrNotFound, patch.ID)
	}

	rec := toRecord(doc.ID, doc.Content, doc.Embedding, doc.Metadata)
	if patch.Content != nil {
		rec.Content = *patch.Content
	}
	if patch.Category != nil {
		rec.Category = *patch.Category
	}
	if patch.Tags != nil {
		rec.Tags = *patch.Tags
	}
	if patch.Source != nil {
		rec.Source = *patch.Source
	}
	if patch.UpdatedAt != nil {
		rec.UpdatedAt = *patch.UpdatedAt
	}
	if patch.Importance != nil {
		rec.Importance = *patch.Importance
	}
	if patch.AccessCount != nil {
		rec.AccessCount = *patch.AccessCount
	}
	if patch.Embedding != nil {
		rec.Embedding = patch.Embedding
	}

	merged, err := toDocument(rec)
	if err != nil {
		return fmt.Errorf("%w: record %s: %v", memstore.ErrUpdate, patch.ID, err)
	}
	if err := c.col.AddDocument(ctx, merged); err != nil {
		return fmt.Errorf("%w: re-adding record %s: %v", memstore.ErrUpdate, patch.ID, err)
	}

	return nil
}

// Delete removes records by their ids.
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	var found []string
	for _, id := range ids {
		if _, err := c.col.GetByID(ctx, id); err == nil {
			found = append(found, id)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("%w: %s", memstore.ErrNotFound, strings.Join(ids, ", "))
	}

	if err := c.col.Delete(ctx, nil, nil, found...); err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}

	c.logger.Debug("deleted records", "count", len(found))

	return nil
}

// isInsufficientDocsError reports whether a QueryEmbedding error only means
// nResults exceeded the candidate pool, which is retryable at a smaller size.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

// matchesClientSide applies the filter conditions chromem cannot express in
// its where clause (tags and importance).
func matchesClientSide(rec memstore.Record, filter *memstore.Filter) bool {
	for _, cond := range filter.Conditions() {
		switch cond.Op {
		case memstore.OpContainsAll:
			for _, want := range cond.Values {
				var ok bool
				for _, tag := range rec.Tags {
					if tag == want {
						ok = true
						break
					}
				}
				if !ok {
					return false
				}
			}
		case memstore.OpGte:
			if rec.Importance < cond.Number {
				return false
			}
		}
	}
	return true
}

// Query finds the topK most similar records, optionally constrained by a
// conjunctive filter. Category filters are pushed down to chromem's where
// clause; tag and importance conditions are applied to the returned
// candidates.
func (c *Collection) Query(ctx context.Context, embedding []float32, topK int, filter *memstore.Filter) ([]memstore.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	var (
		where      map[string]string
		needsLocal bool
	)
	for _, cond := range filter.Conditions() {
		switch cond.Op {
		case memstore.OpEq:
			if where == nil {
				where = make(map[string]string)
			}
			where[cond.Field] = cond.Value
		default:
			needsLocal = true
		}
	}

	total := c.col.Count()
	if total == 0 {
		return nil, nil
	}

	// chromem rejects nResults larger than the collection, and local
	// post-filtering needs candidates beyond topK.
	n := topK
	if needsLocal {
		n = total
	}
	if n > total {
		n = total
	}

	// A where clause shrinks the candidate pool below nResults; retry at
	// progressively smaller sizes. Anything other than an
	// insufficient-documents complaint is a real engine failure.
	var results []chromemgo.Result
	for {
		var err error
		results, err = c.col.QueryEmbedding(ctx, embedding, n, where, nil)
		if err == nil {
			break
		}
		if !isInsufficientDocsError(err) {
			return nil, fmt.Errorf("querying collection: %w", err)
		}
		if n == 1 {
			// Nothing matches the where clause.
			return nil, nil
		}
		n--
	}

	var matches []memstore.Match
	for _, res := range results {
		rec := toRecord(res.ID, res.Content, res.Embedding, res.Metadata)
		if needsLocal && !matchesClientSide(rec, filter) {
			continue
		}
		matches = append(matches, memstore.Match{
			Record: rec,
			// chromem reports cosine similarity; rescale through the
			// same 1/(1+distance) mapping the sqlite engine uses.
			Score: float32(1.0 / (1.0 + float64(1.0-res.Similarity))),
		})
		if len(matches) == topK {
			break
		}
	}

	c.logger.Debug("queried collection",
		"results", len(matches),
		"filter", filter.String(),
	)

	return matches, nil
}

// Flush is a no-op: chromem's persistent mode writes each document to disk
// as it is added.
func (c *Collection) Flush(context.Context) error {
	return nil
}

// Stats returns aggregate collection statistics.
func (c *Collection) Stats(context.Context) (memstore.Stats, error) {
	return memstore.Stats{Count: int64(c.col.Count())}, nil
}

// Close releases resources held by the collection.
func (c *Collection) Close() error {
	return nil
}

var _ memstore.Collection = (*Collection)(nil)
