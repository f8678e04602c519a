package memory_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/embeddings"
	"github.com/mnemoware/mnemo/pkg/logger"
	"github.com/mnemoware/mnemo/pkg/memory"
	"github.com/mnemoware/mnemo/pkg/memstore"
	"github.com/mnemoware/mnemo/pkg/memstore/sqlitevec"
	"github.com/mnemoware/mnemo/pkg/storecfg"
)

const dim = 4

// fakeEmbedder returns fixed vectors for known texts and a constant vector
// otherwise, so similarity ordering in tests is deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0.5, 0.5, 0.5, 0.5}, nil
}

func (f *fakeEmbedder) Close() error { return nil }

// bumpFailingCollection fails every Update, to exercise the best-effort
// access count path.
type bumpFailingCollection struct {
	memstore.Collection
}

func (c *bumpFailingCollection) Update(context.Context, memstore.Patch) error {
	return errors.New("update rejected")
}

var _ = Describe("Service", func() {
	var (
		ctx context.Context
		col memstore.Collection
		emb *fakeEmbedder
		svc *memory.Service
	)

	newService := func(c memstore.Collection) *memory.Service {
		cfg := &storecfg.Config{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			Dimension: dim,
			DBPath:    ":memory:",
			Engine:    "sqlite",
		}
		return memory.NewService(cfg, "/tmp/store", c, emb, logger.Nop())
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		col, err = sqlitevec.New(sqlitevec.Config{DBPath: ":memory:", Dimension: dim}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		emb = &fakeEmbedder{vectors: map[string][]float32{
			"likes go":    {1, 0, 0, 0},
			"likes rust":  {0, 1, 0, 0},
			"likes water": {0, 0, 1, 0},
		}}
		svc = newService(col)
	})

	AfterEach(func() {
		Expect(col.Close()).To(Succeed())
	})

	Describe("Store", func() {
		It("rejects empty content", func() {
			_, err := svc.Store(ctx, memory.StoreInput{Content: "   "})
			Expect(err).To(MatchError(memory.ErrEmptyContent))
		})

		It("applies defaults and assigns an id", func() {
			res, err := svc.Store(ctx, memory.StoreInput{Content: "likes go"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ID).To(HavePrefix("mem_"))
			Expect(res.ID).To(HaveLen(16))
			Expect(res.Category).To(Equal("fact"))
			Expect(res.Tags).To(BeEmpty())
			Expect(res.Importance).To(Equal(0.5))
			Expect(res.CreatedAt).To(BeNumerically(">", 0))
		})

		It("persists a record fetchable with zero access count", func() {
			res, err := svc.Store(ctx, memory.StoreInput{
				Content:  "likes go",
				Category: "preference",
				Tags:     []string{"lang"},
				Source:   "conversation",
			})
			Expect(err).NotTo(HaveOccurred())

			recs, err := col.Fetch(ctx, []string{res.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Content).To(Equal("likes go"))
			Expect(recs[0].Category).To(Equal("preference"))
			Expect(recs[0].AccessCount).To(Equal(int32(0)))
			Expect(recs[0].CreatedAt).To(Equal(recs[0].UpdatedAt))
		})

		It("honors a caller-supplied id", func() {
			res, err := svc.Store(ctx, memory.StoreInput{Content: "likes go", ID: "mem_aaaaaaaaaaaa"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ID).To(Equal("mem_aaaaaaaaaaaa"))
		})

		It("leaves the store untouched when embedding fails", func() {
			emb.err = fmt.Errorf("%w: boom", embeddings.ErrEmbedding)

			_, err := svc.Store(ctx, memory.StoreInput{Content: "likes go"})
			Expect(err).To(MatchError(embeddings.ErrEmbedding))

			stats, err := col.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Count).To(BeZero())
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			for _, content := range []string{"likes go", "likes rust", "likes water"} {
				_, err := svc.Store(ctx, memory.StoreInput{Content: content})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("rejects empty query text", func() {
			_, err := svc.Query(ctx, memory.QueryInput{Text: ""})
			Expect(err).To(MatchError(memory.ErrEmptyQuery))
		})

		It("returns the most similar memories with rounded scores", func() {
			res, err := svc.Query(ctx, memory.QueryInput{Text: "likes go", TopK: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(2))
			Expect(res.Memories[0].Content).To(Equal("likes go"))
			Expect(res.Memories[0].Score).To(BeNumerically("~", 1.0, 0.001))
		})

		It("increments access counts by one per query", func() {
			res, err := svc.Query(ctx, memory.QueryInput{Text: "likes go", TopK: 1})
			Expect(err).NotTo(HaveOccurred())
			id := res.Memories[0].ID
			// reported count is the pre-bump value
			Expect(res.Memories[0].AccessCount).To(Equal(int32(0)))

			res, err = svc.Query(ctx, memory.QueryInput{Text: "likes go", TopK: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Memories[0].AccessCount).To(Equal(int32(1)))

			recs, err := col.Fetch(ctx, []string{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(recs[0].AccessCount).To(Equal(int32(2)))
		})

		It("still succeeds when access count updates fail", func() {
			flaky := &bumpFailingCollection{Collection: col}
			res, err := newService(flaky).Query(ctx, memory.QueryInput{Text: "likes go", TopK: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(1))
		})

		It("applies category and importance filters", func() {
			_, err := svc.Store(ctx, memory.StoreInput{
				Content:    "likes go a lot",
				Category:   "preference",
				Importance: ptr(0.9),
			})
			Expect(err).NotTo(HaveOccurred())

			res, err := svc.Query(ctx, memory.QueryInput{
				Text:          "likes go",
				Category:      "preference",
				MinImportance: ptr(0.8),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(1))
			Expect(res.Memories[0].Content).To(Equal("likes go a lot"))
		})
	})

	Describe("List", func() {
		It("returns the most recent memories up to the limit", func() {
			var ids []string
			for i := 0; i < 5; i++ {
				res, err := svc.Store(ctx, memory.StoreInput{Content: fmt.Sprintf("note %d", i)})
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, res.ID)

				// same-second inserts sort stably, force distinct timestamps
				ts := int64(1700000000 + i)
				Expect(col.Update(ctx, memstore.Patch{ID: res.ID, UpdatedAt: &ts})).To(Succeed())
			}

			res, err := svc.List(ctx, memory.ListInput{Limit: 2, SortBy: "updated_at"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(2))
			Expect(res.Memories[0].ID).To(Equal(ids[4]))
			Expect(res.Memories[1].ID).To(Equal(ids[3]))
		})

		It("sorts by category ascending", func() {
			for _, category := range []string{"preference", "fact", "decision"} {
				_, err := svc.Store(ctx, memory.StoreInput{Content: "x", Category: category})
				Expect(err).NotTo(HaveOccurred())
			}

			res, err := svc.List(ctx, memory.ListInput{SortBy: "category"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Memories[0].Category).To(Equal("decision"))
			Expect(res.Memories[1].Category).To(Equal("fact"))
			Expect(res.Memories[2].Category).To(Equal("preference"))
		})

		It("filters by category", func() {
			_, err := svc.Store(ctx, memory.StoreInput{Content: "a", Category: "fact"})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Store(ctx, memory.StoreInput{Content: "b", Category: "decision"})
			Expect(err).NotTo(HaveOccurred())

			res, err := svc.List(ctx, memory.ListInput{Category: "decision"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(1))
			Expect(res.Memories[0].Content).To(Equal("b"))
		})
	})

	Describe("Update", func() {
		var id string

		BeforeEach(func() {
			res, err := svc.Store(ctx, memory.StoreInput{Content: "likes go"})
			Expect(err).NotTo(HaveOccurred())
			id = res.ID
		})

		It("returns not found for an unknown id", func() {
			_, err := svc.Update(ctx, memory.UpdateInput{ID: "mem_00000000dead", Importance: ptr(0.9)})
			Expect(err).To(MatchError(memstore.ErrNotFound))
		})

		It("updates importance without touching content or vector", func() {
			before, err := col.Fetch(ctx, []string{id})
			Expect(err).NotTo(HaveOccurred())

			res, err := svc.Update(ctx, memory.UpdateInput{ID: id, Importance: ptr(0.9)})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.UpdatedFields).To(Equal([]string{"updated_at", "importance"}))

			after, err := col.Fetch(ctx, []string{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(after[0].Importance).To(Equal(0.9))
			Expect(after[0].Content).To(Equal("likes go"))
			Expect(after[0].Embedding).To(Equal(before[0].Embedding))
		})

		It("re-embeds when content changes", func() {
			_, err := svc.Update(ctx, memory.UpdateInput{ID: id, Content: ptr("likes rust")})
			Expect(err).NotTo(HaveOccurred())

			after, err := col.Fetch(ctx, []string{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(after[0].Content).To(Equal("likes rust"))
			Expect(after[0].Embedding).To(Equal([]float32{0, 1, 0, 0}))
		})

		It("mutates nothing when re-embedding fails", func() {
			emb.err = fmt.Errorf("%w: boom", embeddings.ErrEmbedding)

			_, err := svc.Update(ctx, memory.UpdateInput{ID: id, Content: ptr("likes rust")})
			Expect(err).To(MatchError(embeddings.ErrEmbedding))

			after, err := col.Fetch(ctx, []string{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(after[0].Content).To(Equal("likes go"))
		})
	})

	Describe("Delete", func() {
		It("deletes an existing memory", func() {
			res, err := svc.Store(ctx, memory.StoreInput{Content: "likes go"})
			Expect(err).NotTo(HaveOccurred())

			del, err := svc.Delete(ctx, res.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(del.Message).To(Equal("Memory deleted"))

			recs, err := col.Fetch(ctx, []string{res.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(BeEmpty())
		})

		It("returns not found for an unknown id", func() {
			_, err := svc.Delete(ctx, "mem_00000000dead")
			Expect(err).To(MatchError(memstore.ErrNotFound))
		})
	})

	Describe("Stats", func() {
		It("reports totals and per-category breakdown without zero counts", func() {
			for _, category := range []string{"fact", "fact", "decision"} {
				_, err := svc.Store(ctx, memory.StoreInput{Content: "x", Category: category})
				Expect(err).NotTo(HaveOccurred())
			}

			res, err := svc.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.TotalMemories).To(Equal(int64(3)))
			Expect(res.Categories).To(Equal(map[string]int{"fact": 2, "decision": 1}))
			Expect(res.Provider).To(Equal("ollama"))
			Expect(res.Model).To(Equal("nomic-embed-text"))
			Expect(res.Dimension).To(Equal(dim))
			Expect(res.Path).To(Equal("/tmp/store"))
			Expect(res.SizeHuman).NotTo(BeEmpty())
		})
	})

	Describe("ProbeEmbedding", func() {
		It("reports the measured vector dimension", func() {
			n, err := svc.ProbeEmbedding(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(dim))
		})

		It("propagates provider failures", func() {
			emb.err = errors.New("provider down")
			_, err := svc.ProbeEmbedding(ctx)
			Expect(err).To(HaveOccurred())
		})
	})
})

func ptr[T any](v T) *T { return &v }
