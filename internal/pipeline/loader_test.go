package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const janCSV = `Receipt No.,Completion Time,Details,Transaction Status,Paid In,Withdrawn,Balance
RKT1AB2CD3,2025-01-10 09:30:00,Funds received from 0722***123 - PETER OCHIENG,Completed,"5,000.00",,"5,000.00"
RKT1AB2CD4,2025-01-11 12:00:00,Customer Transfer to 0712***456 - JOHN DOE,Completed,,"1,000.00","4,000.00"
`

func TestLoad_DedupesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "till", "jan.csv"), janCSV)
	// Overlapping export containing the same receipt.
	writeFile(t, filepath.Join(dir, "till", "jan-copy.csv"), janCSV)
	writeFile(t, filepath.Join(dir, "manual.jsonl"),
		`{"id":"m1","kind":"expense","amount":300,"occurred_at":"2025-01-09T08:00:00Z"}`+"\n")

	var calls atomic.Int32
	res, err := Load(context.Background(), dir, LoadOptions{
		Location: time.UTC,
		Progress: func(current, total int) { calls.Add(1) },
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.TotalFiles != 3 || res.ParsedFiles != 3 {
		t.Fatalf("files = %d/%d, want 3/3", res.ParsedFiles, res.TotalFiles)
	}
	if len(res.Transactions) != 3 || res.Duplicates != 2 {
		t.Fatalf("transactions = %d, duplicates = %d; want 3, 2", len(res.Transactions), res.Duplicates)
	}
	if res.Transactions[0].ID != "m1" {
		t.Fatalf("first = %s, want the oldest (m1)", res.Transactions[0].ID)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("progress calls = %d, want 3", n)
	}
	if b := Balance(res.Transactions); b != 3700 {
		t.Fatalf("Balance = %d, want 3700", b)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	res, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Transactions) != 0 {
		t.Fatalf("transactions = %d, want 0", len(res.Transactions))
	}
}

func TestLoadWithCache_ReusesUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	jan := filepath.Join(dir, "jan.csv")
	manual := filepath.Join(dir, "manual.jsonl")
	writeFile(t, jan, janCSV)
	writeFile(t, manual, `{"id":"m1","kind":"expense","amount":300,"occurred_at":"2025-01-09T08:00:00Z"}`+"\n")

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	opts := LoadOptions{Location: time.UTC}

	first, err := LoadWithCache(ctx, dir, cache, opts)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.Reparsed != 2 || first.CacheHits != 0 || len(first.Transactions) != 3 {
		t.Fatalf("first = reparsed %d, hits %d, txs %d", first.Reparsed, first.CacheHits, len(first.Transactions))
	}

	second, err := LoadWithCache(ctx, dir, cache, opts)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.Reparsed != 0 || second.CacheHits != 2 || len(second.Transactions) != 3 {
		t.Fatalf("second = reparsed %d, hits %d, txs %d", second.Reparsed, second.CacheHits, len(second.Transactions))
	}

	if err := os.Remove(manual); err != nil {
		t.Fatal(err)
	}
	third, err := LoadWithCache(ctx, dir, cache, opts)
	if err != nil {
		t.Fatalf("third load: %v", err)
	}
	if third.Removed != 1 || len(third.Transactions) != 2 {
		t.Fatalf("third = removed %d, txs %d; want 1, 2", third.Removed, len(third.Transactions))
	}
}
