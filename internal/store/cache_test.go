package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "runway.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SaveAndLoad(t *testing.T) {
	c := openTestCache(t)
	at := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

	txs := []model.Transaction{
		{ID: "b", Kind: model.KindExpense, Amount: 800, OccurredAt: at.Add(time.Hour), Description: "Boda Rider", IsRecurring: true, Source: model.SourceManual},
		{ID: "a", Kind: model.KindIncome, Amount: 2500, OccurredAt: at, CategoryID: "sales", Counterparty: "Jane", Reference: "RKT1AB2CD3", Source: model.SourceMpesa},
	}
	if err := c.SaveFile("/data/jan.csv", txs, 111, 222); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if fi := tracked["/data/jan.csv"]; fi.MtimeNs != 111 || fi.SizeBytes != 222 {
		t.Fatalf("tracked = %+v, want 111/222", fi)
	}

	got, err := c.LoadAllTransactions()
	if err != nil {
		t.Fatalf("LoadAllTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Reference != "RKT1AB2CD3" || got[0].CategoryID != "sales" {
		t.Fatalf("first = %+v", got[0])
	}
	if !got[0].OccurredAt.Equal(at) {
		t.Fatalf("OccurredAt = %s, want %s", got[0].OccurredAt, at)
	}
	if !got[1].IsRecurring || got[1].FilePath != "/data/jan.csv" || got[1].Kind != model.KindExpense {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestCache_SaveReplacesAndDeleteCascades(t *testing.T) {
	c := openTestCache(t)
	at := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	first := []model.Transaction{
		{ID: "a", Kind: model.KindIncome, Amount: 1, OccurredAt: at},
		{ID: "b", Kind: model.KindIncome, Amount: 2, OccurredAt: at},
	}
	if err := c.SaveFile("/data/x.jsonl", first, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile("/data/x.jsonl", first[:1], 2, 1); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.TransactionCount(); n != 1 {
		t.Fatalf("count after resave = %d, want 1", n)
	}

	if err := c.DeleteFile("/data/x.jsonl"); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.TransactionCount(); n != 0 {
		t.Fatalf("count after delete = %d, want 0", n)
	}
}
