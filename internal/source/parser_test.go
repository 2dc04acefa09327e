package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

var nairobi = time.FixedZone("EAT", 3*60*60)

// writeStatement creates a temp statement file and returns a DiscoveredFile for it.
func writeStatement(t *testing.T, name string, format Format, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Format: format}
}

func TestParseFile_JSONL(t *testing.T) {
	df := writeStatement(t, "tx.jsonl", FormatJSONL,
		`{"id":"t1","kind":"income","amount":2500,"occurred_at":"2025-01-10T09:30:00+03:00","category_id":"sales","sender_name":"Jane Wanjiku","reference":"RKT1AB2CD3"}`,
		`{"kind":"expense","amount":800,"occurred_at":"2025-01-10 14:00:00","description":"Boda Rider","is_recurring":true}`,
		`{"type":"expense","amount":300,"date":"2025-01-11"}`,
	)

	result := ParseFile(df, nairobi)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("Transactions = %d, want 3", len(result.Transactions))
	}

	first := result.Transactions[0]
	if first.ID != "t1" || first.Kind != model.KindIncome || first.Amount != 2500 {
		t.Errorf("first = %+v", first)
	}
	if first.Counterparty != "Jane Wanjiku" || first.Source != model.SourceMpesa {
		t.Errorf("first counterparty/source = %q/%q", first.Counterparty, first.Source)
	}
	if first.FilePath != df.Path {
		t.Errorf("FilePath = %q, want %q", first.FilePath, df.Path)
	}

	second := result.Transactions[1]
	want := time.Date(2025, 1, 10, 14, 0, 0, 0, nairobi)
	if !second.OccurredAt.Equal(want) {
		t.Errorf("OccurredAt = %s, want %s", second.OccurredAt, want)
	}
	if !second.IsRecurring || second.Source != model.SourceManual {
		t.Errorf("second recurring/source = %v/%q", second.IsRecurring, second.Source)
	}
	if second.ID == "" {
		t.Error("missing generated ID")
	}
	if result.Transactions[2].Kind != model.KindExpense {
		t.Errorf("dashboard type field not honored: %q", result.Transactions[2].Kind)
	}
}

func TestParseFile_JSONLMalformedLines(t *testing.T) {
	df := writeStatement(t, "tx.jsonl", FormatJSONL,
		`{"kind":"income","amount":100,"occurred_at":"2025-01-10T09:30:00Z"}`,
		`not json`,
		`{"kind":"refund","amount":100,"occurred_at":"2025-01-10T09:30:00Z"}`,
		`{"kind":"expense","amount":-5,"occurred_at":"2025-01-10T09:30:00Z"}`,
		`{"kind":"expense","amount":5,"occurred_at":"yesterday"}`,
		``,
	)

	result := ParseFile(df, time.UTC)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Transactions) != 1 {
		t.Errorf("Transactions = %d, want 1", len(result.Transactions))
	}
	if result.ParseErrors != 4 {
		t.Errorf("ParseErrors = %d, want 4", result.ParseErrors)
	}
}

func TestParseFile_MpesaCSV(t *testing.T) {
	df := writeStatement(t, "statement.csv", FormatCSV,
		`Receipt No.,Completion Time,Details,Transaction Status,Paid In,Withdrawn,Balance`,
		`RKT1AB2CD3,2025-01-10 09:30:00,Funds received from 0722***123 - PETER OCHIENG,Completed,"1,250.50",,"11,250.50"`,
		`RKT1AB2CD4,2025-01-10 12:00:00,Pay Bill to 888880 - KPLC PREPAID Acc. 1234,Completed,,"-2,000.00","9,250.50"`,
		`RKT1AB2CD5,2025-01-10 12:05:00,Customer Transfer to 0712***456 - JOHN DOE,Failed,,500.00,"9,250.50"`,
		`RKT1AB2CD6,not a time,Customer Transfer,Completed,,500.00,"8,750.50"`,
	)

	result := ParseFile(df, nairobi)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("Transactions = %d, want 2", len(result.Transactions))
	}
	if result.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", result.ParseErrors)
	}

	in := result.Transactions[0]
	if in.Kind != model.KindIncome || in.Amount != 1251 {
		t.Errorf("income = %s/%d, want income/1251", in.Kind, in.Amount)
	}
	if in.Counterparty != "PETER OCHIENG" || in.Reference != "RKT1AB2CD3" {
		t.Errorf("income counterparty/reference = %q/%q", in.Counterparty, in.Reference)
	}
	if !in.OccurredAt.Equal(time.Date(2025, 1, 10, 9, 30, 0, 0, nairobi)) {
		t.Errorf("OccurredAt = %s", in.OccurredAt)
	}

	out := result.Transactions[1]
	if out.Kind != model.KindExpense || out.Amount != 2000 {
		t.Errorf("expense = %s/%d, want expense/2000", out.Kind, out.Amount)
	}
	if out.Counterparty != "KPLC PREPAID" {
		t.Errorf("expense counterparty = %q, want KPLC PREPAID", out.Counterparty)
	}
}

func TestParseFile_CSVMissingColumns(t *testing.T) {
	df := writeStatement(t, "other.csv", FormatCSV, `Date,Amount`, `2025-01-10,100`)
	if result := ParseFile(df, time.UTC); result.Err == nil {
		t.Fatal("expected error for unknown CSV layout")
	}
}

func TestTransactionID_StableAcrossFiles(t *testing.T) {
	a := TransactionID("rkt1ab2cd3", "a.csv:1")
	b := TransactionID("RKT1AB2CD3 ", "b.pdf:9")
	if a != b {
		t.Fatalf("ids differ for the same receipt: %s vs %s", a, b)
	}
	if TransactionID("", "a.csv:1") == TransactionID("", "a.csv:2") {
		t.Fatal("fallback ids should differ")
	}
}

func TestParseStatementLines(t *testing.T) {
	lines := []string{
		"M-PESA STATEMENT",
		"Receipt No. Completion Time Details Transaction Status Paid In Withdrawn Balance",
		"RKT1AB2CD3 2025-01-10 09:30:00 Funds received from 0722***123 - PETER OCHIENG Completed 1,250.00 11,250.00",
		"RKT1AB2CD4   2025-01-10 12:00:00  Customer Transfer to 0712***456 - JOHN DOE   Completed  -2,000.00  9,250.00",
		"RKT1AB2CD5 2025-01-11 08:00:00 Airtime Purchase Completed 0.00 -100.00 9,150.00",
		"RKT1AB2CD6 2025-01-11 09:00:00 Customer Transfer Failed -500.00 9,150.00",
		"Page 1 of 3",
	}

	result := parseStatementLines(lines, nairobi)
	if len(result.Transactions) != 3 {
		t.Fatalf("Transactions = %d, want 3", len(result.Transactions))
	}
	want := []struct {
		kind   model.Kind
		amount int64
	}{
		{model.KindIncome, 1250},
		{model.KindExpense, 2000},
		{model.KindExpense, 100},
	}
	for i, w := range want {
		got := result.Transactions[i]
		if got.Kind != w.kind || got.Amount != w.amount {
			t.Errorf("tx[%d] = %s/%d, want %s/%d", i, got.Kind, got.Amount, w.kind, w.amount)
		}
	}
	if result.Transactions[1].Counterparty != "JOHN DOE" {
		t.Errorf("counterparty = %q, want JOHN DOE", result.Transactions[1].Counterparty)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(rel string) {
		t.Helper()
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("manual.jsonl")
	mustWrite("till/2025-01.CSV")
	mustWrite("till/2025-02.pdf")
	mustWrite("till/notes.txt")
	mustWrite(".hidden/skip.csv")

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3: %+v", len(files), files)
	}
	formats := map[Format]int{}
	for _, f := range files {
		formats[f.Format]++
	}
	if formats[FormatJSONL] != 1 || formats[FormatCSV] != 1 || formats[FormatPDF] != 1 {
		t.Errorf("formats = %v", formats)
	}
	if n := CountAccounts(files); n != 2 {
		t.Errorf("CountAccounts = %d, want 2", n)
	}

	missing, err := ScanDir(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("ScanDir(missing) = %v, %v; want nil, nil", missing, err)
	}
}
