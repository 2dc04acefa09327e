// Package source discovers and parses transaction statements: JSONL
// exports, M-Pesa CSV statements and M-Pesa PDF statements.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/runway/internal/model"
)

// idNamespace scopes generated transaction ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("runway.mpesa"))

// ParseResult holds the output of parsing a single statement file.
type ParseResult struct {
	Transactions []model.Transaction
	ParseErrors  int
	Err          error
}

// ParseFile reads a statement file and returns its transactions. Times
// without an explicit offset are interpreted in loc.
func ParseFile(df DiscoveredFile, loc *time.Location) ParseResult {
	if loc == nil {
		loc = time.Local
	}

	var res ParseResult
	switch df.Format {
	case FormatJSONL:
		res = parseJSONL(df.Path, loc)
	case FormatCSV:
		res = parseCSV(df.Path, loc)
	case FormatPDF:
		res = parsePDF(df.Path, loc)
	default:
		return ParseResult{Err: fmt.Errorf("unsupported format %q", df.Format)}
	}

	for i := range res.Transactions {
		res.Transactions[i].FilePath = df.Path
	}
	return res
}

func parseJSONL(path string, loc *time.Location) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var res ParseResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw RawTransaction
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			res.ParseErrors++
			continue
		}
		tx, err := raw.toTransaction(loc)
		if err != nil {
			res.ParseErrors++
			continue
		}
		if tx.ID == "" {
			tx.ID = TransactionID(tx.Reference, path+":"+strconv.Itoa(lineNo))
		}
		res.Transactions = append(res.Transactions, tx)
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

func (r RawTransaction) toTransaction(loc *time.Location) (model.Transaction, error) {
	kind := model.Kind(strings.ToLower(r.Kind))
	if r.Kind == "" {
		kind = model.Kind(strings.ToLower(r.Type))
	}
	if !kind.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown kind %q", r.Kind)
	}
	if r.Amount < 0 {
		return model.Transaction{}, fmt.Errorf("negative amount %d", r.Amount)
	}

	stamp := r.OccurredAt
	if stamp == "" {
		stamp = r.Date
	}
	at, err := parseTimestamp(stamp, loc)
	if err != nil {
		return model.Transaction{}, err
	}

	src := model.Source(r.Source)
	if src == "" {
		src = model.SourceManual
		if r.Reference != "" {
			src = model.SourceMpesa
		}
	}

	return model.Transaction{
		ID:           r.ID,
		Kind:         kind,
		Amount:       r.Amount,
		OccurredAt:   at,
		CategoryID:   r.CategoryID,
		Description:  r.Description,
		Counterparty: r.SenderName,
		Reference:    r.Reference,
		IsRecurring:  r.IsRecurring,
		Source:       src,
	}, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// TransactionID derives a stable id from an M-Pesa receipt number, or from
// fallback when the receipt is empty.
func TransactionID(receipt, fallback string) string {
	key := "receipt:" + strings.ToUpper(strings.TrimSpace(receipt))
	if strings.TrimSpace(receipt) == "" {
		key = "row:" + fallback
	}
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}
