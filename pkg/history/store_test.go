package history_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/promptforge/promptforge/pkg/history"
	"github.com/promptforge/promptforge/pkg/quality"
)

func newRecord(original string) *history.Record {
	return history.NewRecord(
		original,
		"testing purpose",
		"optimized "+original,
		[]string{"tightened wording", "added output format"},
		"explanation",
		quality.Metrics{Clarity: 0.7, Specificity: 0.5, Structure: 0.25, Completeness: 1},
		false,
		150*time.Millisecond,
	)
}

// storeBehavior asserts the Store contract against any backend.
func storeBehavior(newStore func() history.Store) {
	var (
		store history.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStore()
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a record", func() {
			record := newRecord("write a poem")

			err := store.Put(ctx, record)
			Expect(err).NotTo(HaveOccurred())

			retrieved, err := store.Get(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.ID).To(Equal(record.ID))
			Expect(retrieved.OriginalPrompt).To(Equal("write a poem"))
			Expect(retrieved.Improvements).To(Equal(record.Improvements))
			Expect(retrieved.Metrics).To(Equal(record.Metrics))
			Expect(retrieved.FallbackUsed).To(BeFalse())
			Expect(retrieved.DurationMs).To(Equal(int64(150)))
		})

		It("returns ErrNotFound for a non-existent id", func() {
			_, err := store.Get(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFoundErr history.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
		})

		It("isolates stored records from caller mutation", func() {
			record := newRecord("immutable")
			Expect(store.Put(ctx, record)).To(Succeed())

			record.OptimizedPrompt = "mutated after put"
			record.Improvements[0] = "mutated after put"

			retrieved, err := store.Get(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.OptimizedPrompt).To(Equal("optimized immutable"))
			Expect(retrieved.Improvements[0]).To(Equal("tightened wording"))

			retrieved.OptimizedPrompt = "mutated after get"
			retrieved.Improvements[0] = "mutated after get"

			listed, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].OptimizedPrompt).To(Equal("optimized immutable"))
			Expect(listed[0].Improvements[0]).To(Equal("tightened wording"))

			listed[0].Improvements[0] = "mutated after list"

			again, err := store.Get(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Improvements[0]).To(Equal("tightened wording"))
		})

		It("overwrites a record with the same id", func() {
			record := newRecord("v1")
			Expect(store.Put(ctx, record)).To(Succeed())

			record.OptimizedPrompt = "v2"
			Expect(store.Put(ctx, record)).To(Succeed())

			retrieved, err := store.Get(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.OptimizedPrompt).To(Equal("v2"))

			records, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})
	})

	Describe("List", func() {
		It("returns an empty list for an empty store", func() {
			records, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("returns records newest first", func() {
			older := newRecord("older")
			older.CreatedAt = time.Now().UTC().Add(-time.Hour)
			newer := newRecord("newer")

			Expect(store.Put(ctx, older)).To(Succeed())
			Expect(store.Put(ctx, newer)).To(Succeed())

			records, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].OriginalPrompt).To(Equal("newer"))
			Expect(records[1].OriginalPrompt).To(Equal("older"))
		})
	})
}

var _ = Describe("MemoryStore", func() {
	storeBehavior(func() history.Store {
		return history.NewMemoryStore()
	})
})

var _ = Describe("SQLiteStore", func() {
	storeBehavior(func() history.Store {
		store, err := history.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return store
	})

	It("creates a database file on disk", func() {
		tmpDir := GinkgoT().TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		store, err := history.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("preserves records fallback flag", func() {
		store, err := history.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		record := newRecord("fb")
		record.FallbackUsed = true
		Expect(store.Put(context.Background(), record)).To(Succeed())

		retrieved, err := store.Get(context.Background(), record.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.FallbackUsed).To(BeTrue())
	})
})
