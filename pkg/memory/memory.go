// Package memory implements the memory operations the CLI and MCP surfaces
// expose: store, query, list, update, delete, and stats. It sits between
// the embedding provider and the storage engine; embeddings are always
// computed before any store mutation, so a provider failure leaves the
// store untouched.
package memory

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mnemoware/mnemo/pkg/embeddings"
	"github.com/mnemoware/mnemo/pkg/memstore"
	"github.com/mnemoware/mnemo/pkg/storecfg"
	"github.com/mnemoware/mnemo/pkg/textnorm"
	"github.com/mnemoware/mnemo/pkg/utils"
)

// Service executes memory operations against one store.
type Service struct {
	cfg       *storecfg.Config
	storePath string
	col       memstore.Collection
	emb       embeddings.Embedder
	logger    *slog.Logger
}

// NewService wires a service to an open collection and embedder. The
// configuration is the store's pinned one, not the caller's requested one.
func NewService(cfg *storecfg.Config, storePath string, col memstore.Collection, emb embeddings.Embedder, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		storePath: storePath,
		col:       col,
		emb:       emb,
		logger:    logger,
	}
}

// embed normalizes text and requests its embedding.
func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	return s.emb.Embed(ctx, textnorm.Normalize(text))
}

// ProbeEmbedding runs a connectivity-test embedding against the configured
// provider and returns the measured vector dimension.
func (s *Service) ProbeEmbedding(ctx context.Context) (int, error) {
	vec, err := s.embed(ctx, "connectivity test")
	if err != nil {
		return 0, err
	}
	return len(vec), nil
}

// unitVector is the all-ones query vector used to approximate "list all":
// an all-zero vector is invalid for cosine similarity, a constant non-zero
// one is not.
func unitVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = 1.0
	}
	return v
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func toMemory(rec memstore.Record) Memory {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return Memory{
		ID:          rec.ID,
		Content:     rec.Content,
		Category:    rec.Category,
		Tags:        tags,
		Source:      rec.Source,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Importance:  rec.Importance,
		AccessCount: rec.AccessCount,
	}
}

// Store embeds and persists a new memory.
func (s *Service) Store(ctx context.Context, in StoreInput) (*StoreResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}

	embedding, err := s.embed(ctx, in.Content)
	if err != nil {
		return nil, err
	}

	id := in.ID
	if id == "" {
		id = GenerateID()
	}
	category := in.Category
	if category == "" {
		category = DefaultCategory
	}
	importance := DefaultImportance
	if in.Importance != nil {
		importance = *in.Importance
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().Unix()

	rec := memstore.Record{
		ID:         id,
		Content:    in.Content,
		Category:   category,
		Tags:       tags,
		Source:     in.Source,
		CreatedAt:  now,
		UpdatedAt:  now,
		Importance: importance,
		Embedding:  embedding,
	}
	if err := s.col.Insert(ctx, []memstore.Record{rec}); err != nil {
		return nil, err
	}
	if err := s.col.Flush(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("stored memory", "id", id, "category", category)

	return &StoreResult{
		ID:         id,
		Content:    in.Content,
		Category:   category,
		Tags:       tags,
		Importance: importance,
		CreatedAt:  now,
	}, nil
}

// buildFilter assembles the conjunctive filter for optional constraints,
// returning nil when none are given.
func buildFilter(category string, tags []string, minImportance *float64) *memstore.Filter {
	f := memstore.NewFilter()
	if category != "" {
		f = f.Eq(memstore.FieldCategory, category)
	}
	if len(tags) > 0 {
		f = f.ContainsAll(memstore.FieldTags, tags)
	}
	if minImportance != nil {
		f = f.Gte(memstore.FieldImportance, *minImportance)
	}
	return f.OrNil()
}

// Query embeds the query text and returns the topK most similar memories.
// Every returned memory's access count is bumped best-effort afterwards; a
// failed bump is logged, never fatal.
func (s *Service) Query(ctx context.Context, in QueryInput) (*QueryResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := s.embed(ctx, in.Text)
	if err != nil {
		return nil, err
	}

	topK := in.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	filter := buildFilter(in.Category, in.Tags, in.MinImportance)

	matches, err := s.col.Query(ctx, embedding, topK, filter)
	if err != nil {
		return nil, err
	}

	memories := make([]ScoredMemory, 0, len(matches))
	bumped := 0
	for _, m := range matches {
		memories = append(memories, ScoredMemory{
			Memory: toMemory(m.Record),
			Score:  round4(float64(m.Score)),
		})

		count := m.Record.AccessCount + 1
		if err := s.col.Update(ctx, memstore.Patch{ID: m.Record.ID, AccessCount: &count}); err != nil {
			s.logger.Warn("access count update failed", "id", m.Record.ID, "error", err)
			continue
		}
		bumped++
	}
	if bumped > 0 {
		if err := s.col.Flush(ctx); err != nil {
			s.logger.Warn("flush after access count updates failed", "error", err)
		}
	}

	return &QueryResult{
		Query:    in.Text,
		Count:    len(memories),
		Memories: memories,
	}, nil
}

// List returns stored memories, sorted client-side. The engine only offers
// similarity search, so listing scans with a unit vector and discards the
// meaningless scores.
func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	k := limit
	if k > maxScan {
		k = maxScan
	}
	filter := buildFilter(in.Category, in.Tags, nil)

	matches, err := s.col.Query(ctx, unitVector(s.cfg.Dimension), k, filter)
	if err != nil {
		return nil, err
	}

	memories := make([]Memory, 0, len(matches))
	for _, m := range matches {
		memories = append(memories, toMemory(m.Record))
	}

	sortMemories(memories, in.SortBy)
	if len(memories) > limit {
		memories = memories[:limit]
	}

	return &ListResult{
		Count:    len(memories),
		Memories: memories,
	}, nil
}

// sortMemories orders in place: most-recent/highest-first for the numeric
// keys, lexically ascending for category.
func sortMemories(memories []Memory, sortBy string) {
	var less func(a, b Memory) bool
	switch sortBy {
	case "updated_at":
		less = func(a, b Memory) bool { return a.UpdatedAt > b.UpdatedAt }
	case "importance":
		less = func(a, b Memory) bool { return a.Importance > b.Importance }
	case "access_count":
		less = func(a, b Memory) bool { return a.AccessCount > b.AccessCount }
	case "category":
		less = func(a, b Memory) bool { return a.Category < b.Category }
	default:
		less = func(a, b Memory) bool { return a.CreatedAt > b.CreatedAt }
	}
	sort.SliceStable(memories, func(i, j int) bool { return less(memories[i], memories[j]) })
}

// Update changes only the supplied fields of one memory, refreshing
// updated_at and re-embedding when the content changed.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*UpdateResult, error) {
	existing, err := s.col.Fetch(ctx, []string{in.ID})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%w: %s", memstore.ErrNotFound, in.ID)
	}

	now := time.Now().Unix()
	patch := memstore.Patch{ID: in.ID, UpdatedAt: &now}
	fields := []string{"updated_at"}

	if in.Content != nil {
		// Re-embed before touching the store so a provider failure
		// mutates nothing.
		embedding, err := s.embed(ctx, *in.Content)
		if err != nil {
			return nil, err
		}
		patch.Content = in.Content
		patch.Embedding = embedding
		fields = append(fields, "content")
	}
	if in.Category != nil {
		patch.Category = in.Category
		fields = append(fields, "category")
	}
	if in.Tags != nil {
		patch.Tags = in.Tags
		fields = append(fields, "tags")
	}
	if in.Importance != nil {
		patch.Importance = in.Importance
		fields = append(fields, "importance")
	}

	if err := s.col.Update(ctx, patch); err != nil {
		return nil, err
	}
	if err := s.col.Flush(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("updated memory", "id", in.ID, "fields", fields)

	return &UpdateResult{
		ID:            in.ID,
		Message:       "Memory updated",
		UpdatedFields: fields,
	}, nil
}

// Delete removes one memory by id.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	if err := s.col.Delete(ctx, []string{id}); err != nil {
		return nil, err
	}
	if err := s.col.Flush(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("deleted memory", "id", id)

	return &DeleteResult{
		ID:      id,
		Message: "Memory deleted",
	}, nil
}

// Stats summarizes the store: total count, on-disk size, and a per-category
// breakdown. The breakdown comes from one capped unit-vector query per
// category, so it is an approximation bounded by the scan cap.
func (s *Service) Stats(ctx context.Context) (*StatsResult, error) {
	stats, err := s.col.Stats(ctx)
	if err != nil {
		return nil, err
	}

	size := diskSize(s.cfg.DBPath)

	unit := unitVector(s.cfg.Dimension)
	breakdown := make(map[string]int)
	for _, category := range Categories {
		filter := memstore.NewFilter().Eq(memstore.FieldCategory, category)
		matches, err := s.col.Query(ctx, unit, maxScan, filter)
		if err != nil {
			s.logger.Debug("category count failed", "category", category, "error", err)
			continue
		}
		if len(matches) > 0 {
			breakdown[category] = len(matches)
		}
	}

	return &StatsResult{
		TotalMemories: stats.Count,
		SizeBytes:     size,
		SizeHuman:     utils.HumanBytes(size),
		Categories:    breakdown,
		Provider:      s.cfg.Provider,
		Model:         s.cfg.Model,
		Dimension:     s.cfg.Dimension,
		Path:          s.storePath,
	}, nil
}

// diskSize sums file sizes under path, which may be a single database file
// or a directory tree. Missing paths count as zero.
func diskSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
