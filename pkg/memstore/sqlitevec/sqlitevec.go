// Package sqlitevec provides the default embedded memstore engine, backed by
// SQLite with the sqlite-vec extension. Record fields live in a relational
// table; embeddings live in a vec0 virtual table keyed by the same rowid.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mnemoware/mnemo/pkg/memstore"
)

// maxCandidates bounds the KNN over-fetch used when a filter is present.
// vec0 applies k before the outer WHERE, so a filtered query has to request
// more neighbors than it will return.
const maxCandidates = 1024

// Collection implements memstore.Collection using SQLite with sqlite-vec.
type Collection struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config holds configuration for the sqlite-vec engine.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimension is the embedding vector dimension. Required.
	Dimension int
}

// New opens (creating if necessary) a memories collection at the given path.
func New(c Config, logger *slog.Logger) (*Collection, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("%w: database path is required", memstore.ErrConnection)
	}
	if c.Dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", memstore.ErrConnection)
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", memstore.ErrConnection, err)
	}

	// A second pooled connection would see a different ":memory:" database.
	db.SetMaxOpenConns(1)

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", memstore.ErrConnection, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			category TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			source TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			importance REAL NOT NULL,
			access_count INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating memories table: %v", memstore.ErrConnection, err)
	}

	// vec0 virtual table for vector storage and KNN queries. Cosine
	// distance matches the embedding providers' training objective and is
	// why an all-zero query vector is invalid.
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimension,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating vec0 table: %v", memstore.ErrConnection, err)
	}

	logger.Debug("sqlite-vec collection opened",
		"db_path", c.DBPath,
		"dimension", c.Dimension,
		"vec_version", vecVersion,
	)

	return &Collection{db: db, logger: logger}, nil
}

// serializeFloat32 converts a float32 slice to the little-endian BLOB format
// sqlite-vec expects.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshaling tags: %w", err)
	}
	return string(data), nil
}

func unmarshalTags(data string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil
	}
	return tags
}

// Insert stores new records.
func (c *Collection) Insert(ctx context.Context, recs []memstore.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", memstore.ErrInsert, err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		tags, err := marshalTags(rec.Tags)
		if err != nil {
			return fmt.Errorf("%w: record %s: %v", memstore.ErrInsert, rec.ID, err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO memories(id, content, category, tags, source, created_at, updated_at, importance, access_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.Content, rec.Category, tags, nullable(rec.Source),
			rec.CreatedAt, rec.UpdatedAt, rec.Importance, rec.AccessCount)
		if err != nil {
			return fmt.Errorf("%w: inserting record %s: %v", memstore.ErrInsert, rec.ID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: getting rowid for record %s: %v", memstore.ErrInsert, rec.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memory_vectors(rowid, embedding) VALUES (?, ?)`,
			rowID, serializeFloat32(rec.Embedding),
		); err != nil {
			return fmt.Errorf("%w: inserting embedding for record %s: %v", memstore.ErrInsert, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", memstore.ErrInsert, err)
	}

	c.logger.Debug("inserted records", "count", len(recs))

	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const recordColumns = `m.id, m.content, m.category, m.tags, m.source, m.created_at, m.updated_at, m.importance, m.access_count`

func scanRecord(scan func(dest ...any) error) (memstore.Record, int64, error) {
	var (
		rec    memstore.Record
		rowID  int64
		tags   string
		source sql.NullString
	)
	err := scan(&rowID, &rec.ID, &rec.Content, &rec.Category, &tags, &source,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.Importance, &rec.AccessCount)
	if err != nil {
		return memstore.Record{}, 0, err
	}
	rec.Tags = unmarshalTags(tags)
	rec.Source = source.String
	return rec, rowID, nil
}

// Fetch retrieves records by their ids, embeddings included.
func (c *Collection) Fetch(ctx context.Context, ids []string) ([]memstore.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT m.rowid, %s
		FROM memories m
		WHERE m.id IN (%s)
	`, recordColumns, strings.Join(placeholders, ","))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	// Collect results first so the rows cursor is closed before issuing
	// the embedding lookups (SQLite uses a single connection).
	type fetched struct {
		rec   memstore.Record
		rowID int64
	}
	var found []fetched

	for rows.Next() {
		rec, rowID, err := scanRecord(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		found = append(found, fetched{rec: rec, rowID: rowID})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	rows.Close()

	recs := make([]memstore.Record, 0, len(found))
	for _, f := range found {
		var embBlob []byte
		err := c.db.QueryRowContext(ctx,
			`SELECT embedding FROM memory_vectors WHERE rowid = ?`, f.rowID,
		).Scan(&embBlob)
		if err == nil && len(embBlob) > 0 {
			f.rec.Embedding, _ = deserializeFloat32(embBlob)
		}
		recs = append(recs, f.rec)
	}

	return recs, nil
}

// Update applies a partial update to one record.
func (c *Collection) Update(ctx context.Context, patch memstore.Patch) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", memstore.ErrUpdate, err)
	}
	defer tx.Rollback()

	var rowID int64
	err = tx.QueryRowContext(ctx,
		`SELECT rowid FROM memories WHERE id = ?`, patch.ID,
	).Scan(&rowID)
	switch err {
	case nil:
	case sql.ErrNoRows:
		return fmt.Errorf("%w: %s", memstore.ErrNotFound, patch.ID)
	default:
		return fmt.Errorf("%w: looking up record %s: %v", memstore.ErrUpdate, patch.ID, err)
	}

	var (
		sets []string
		args []any
	)
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Tags != nil {
		tags, err := marshalTags(*patch.Tags)
		if err != nil {
			return fmt.Errorf("%w: record %s: %v", memstore.ErrUpdate, patch.ID, err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if patch.Source != nil {
		sets = append(sets, "source = ?")
		args = append(args, nullable(*patch.Source))
	}
	if patch.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, *patch.UpdatedAt)
	}
	if patch.Importance != nil {
		sets = append(sets, "importance = ?")
		args = append(args, *patch.Importance)
	}
	if patch.AccessCount != nil {
		sets = append(sets, "access_count = ?")
		args = append(args, *patch.AccessCount)
	}

	if len(sets) > 0 {
		args = append(args, rowID)
		query := fmt.Sprintf(`UPDATE memories SET %s WHERE rowid = ?`, strings.Join(sets, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: updating record %s: %v", memstore.ErrUpdate, patch.ID, err)
		}
	}

	if patch.Embedding != nil {
		// vec0 does not support UPDATE; replace via DELETE + INSERT.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memory_vectors WHERE rowid = ?`, rowID,
		); err != nil {
			return fmt.Errorf("%w: deleting old embedding for record %s: %v", memstore.ErrUpdate, patch.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memory_vectors(rowid, embedding) VALUES (?, ?)`,
			rowID, serializeFloat32(patch.Embedding),
		); err != nil {
			return fmt.Errorf("%w: re-inserting embedding for record %s: %v", memstore.ErrUpdate, patch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", memstore.ErrUpdate, err)
	}

	return nil
}

// Delete removes records by their ids.
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	inClause := strings.Join(placeholders, ",")

	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT rowid FROM memories WHERE id IN (%s)`, inClause), args...)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	if len(rowIDs) == 0 {
		return fmt.Errorf("%w: %s", memstore.ErrNotFound, strings.Join(ids, ", "))
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memory_vectors WHERE rowid = ?`, rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM memories WHERE id IN (%s)`, inClause), args...); err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	c.logger.Debug("deleted records", "count", len(rowIDs))

	return nil
}

// compileFilter translates filter conditions into SQL predicates over the
// memories table (aliased m). Values are always bound, never interpolated.
func compileFilter(filter *memstore.Filter) (string, []any, error) {
	if filter.Empty() {
		return "", nil, nil
	}

	var (
		preds []string
		args  []any
	)
	for _, cond := range filter.Conditions() {
		switch cond.Op {
		case memstore.OpEq:
			preds = append(preds, fmt.Sprintf("m.%s = ?", cond.Field))
			args = append(args, cond.Value)
		case memstore.OpContainsAll:
			for _, v := range cond.Values {
				preds = append(preds, fmt.Sprintf(
					"EXISTS (SELECT 1 FROM json_each(m.%s) je WHERE je.value = ?)", cond.Field))
				args = append(args, v)
			}
		case memstore.OpGte:
			preds = append(preds, fmt.Sprintf("m.%s >= ?", cond.Field))
			args = append(args, cond.Number)
		default:
			return "", nil, fmt.Errorf("unsupported filter op %d", cond.Op)
		}
	}
	return strings.Join(preds, " AND "), args, nil
}

// Query finds the topK most similar records, optionally constrained by a
// conjunctive filter.
func (c *Collection) Query(ctx context.Context, embedding []float32, topK int, filter *memstore.Filter) ([]memstore.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	where, filterArgs, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	// vec0 ranks k neighbors before the outer WHERE applies, so a
	// filtered query over-fetches candidates and trims afterwards.
	candidateK := topK
	if where != "" {
		candidateK = maxCandidates
	}

	query := fmt.Sprintf(`
		SELECT %s, k.distance
		FROM (
			SELECT rowid, distance
			FROM memory_vectors
			WHERE embedding MATCH ? AND k = ?
		) k
		INNER JOIN memories m ON m.rowid = k.rowid
	`, recordColumns)

	args := []any{serializeFloat32(embedding), candidateK}
	if where != "" {
		query += " WHERE " + where
		args = append(args, filterArgs...)
	}
	query += " ORDER BY k.distance LIMIT ?"
	args = append(args, topK)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var matches []memstore.Match
	for rows.Next() {
		var (
			rec      memstore.Record
			tags     string
			source   sql.NullString
			distance float64
		)
		if err := rows.Scan(&rec.ID, &rec.Content, &rec.Category, &tags, &source,
			&rec.CreatedAt, &rec.UpdatedAt, &rec.Importance, &rec.AccessCount, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		rec.Tags = unmarshalTags(tags)
		rec.Source = source.String

		matches = append(matches, memstore.Match{
			Record: rec,
			// lower distance = higher similarity
			Score: float32(1.0 / (1.0 + distance)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	c.logger.Debug("queried collection",
		"results", len(matches),
		"filter", filter.String(),
	)

	return matches, nil
}

// Flush is a no-op: every write commits its own transaction, and SQLite
// commits are durable.
func (c *Collection) Flush(context.Context) error {
	return nil
}

// Stats returns aggregate collection statistics.
func (c *Collection) Stats(ctx context.Context) (memstore.Stats, error) {
	var count int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&count); err != nil {
		return memstore.Stats{}, fmt.Errorf("counting records: %w", err)
	}
	return memstore.Stats{Count: count}, nil
}

// Close releases resources held by the collection.
func (c *Collection) Close() error {
	return c.db.Close()
}

var _ memstore.Collection = (*Collection)(nil)
