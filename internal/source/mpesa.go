package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// statementRow is one line of an M-Pesa statement before conversion.
type statementRow struct {
	Receipt   string
	Completed string
	Details   string
	Status    string
	PaidIn    string
	Withdrawn string
}

var errSkipRow = errors.New("row skipped")

// toTransaction converts a completed statement row. Rows in any other state
// return errSkipRow.
func (r statementRow) toTransaction(loc *time.Location) (model.Transaction, error) {
	if !strings.EqualFold(strings.TrimSpace(r.Status), "completed") {
		return model.Transaction{}, errSkipRow
	}

	at, err := parseTimestamp(r.Completed, loc)
	if err != nil {
		return model.Transaction{}, err
	}

	paidIn, err := parseAmount(r.PaidIn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("paid in: %w", err)
	}
	withdrawn, err := parseAmount(r.Withdrawn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("withdrawn: %w", err)
	}

	tx := model.Transaction{
		ID:           TransactionID(r.Receipt, r.Completed+"|"+r.Details),
		OccurredAt:   at,
		Description:  strings.TrimSpace(r.Details),
		Counterparty: counterparty(r.Details),
		Reference:    strings.ToUpper(strings.TrimSpace(r.Receipt)),
		Source:       model.SourceMpesa,
	}
	switch {
	case paidIn > 0:
		tx.Kind, tx.Amount = model.KindIncome, paidIn
	case withdrawn > 0:
		tx.Kind, tx.Amount = model.KindExpense, withdrawn
	case paidIn < 0:
		tx.Kind, tx.Amount = model.KindExpense, -paidIn
	case withdrawn < 0:
		tx.Kind, tx.Amount = model.KindExpense, -withdrawn
	default:
		return model.Transaction{}, errSkipRow
	}
	return tx, nil
}

// parseAmount reads "1,250.00" style values, rounded to whole shillings.
// Empty cells are zero.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "KES")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.Abs(f) >= math.MaxInt64 {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return int64(math.Round(f)), nil
}

// counterparty pulls the name after the last " - " in M-Pesa details, e.g.
// "Customer Transfer to 0712***456 - JANE WANJIKU".
func counterparty(details string) string {
	i := strings.LastIndex(details, " - ")
	if i < 0 {
		return ""
	}
	name := strings.TrimSpace(details[i+3:])
	if j := strings.Index(name, " Acc."); j >= 0 {
		name = strings.TrimSpace(name[:j])
	}
	return name
}

var csvColumns = map[string]string{
	"receipt no.":        "receipt",
	"receipt no":         "receipt",
	"receipt":            "receipt",
	"completion time":    "completed",
	"details":            "details",
	"transaction status": "status",
	"paid in":            "paid_in",
	"withdrawn":          "withdrawn",
	"withdraw":           "withdrawn",
}

func parseCSV(path string, loc *time.Location) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()
	return readStatementCSV(f, loc)
}

func readStatementCSV(r io.Reader, loc *time.Location) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}

	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name, ok := csvColumns[key]; ok {
			cols[name] = i
		}
	}
	for _, required := range []string{"completed", "details", "paid_in", "withdrawn"} {
		if _, ok := cols[required]; !ok {
			return ParseResult{Err: fmt.Errorf("missing column %q", required)}
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var res ParseResult
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.ParseErrors++
			continue
		}

		row := statementRow{
			Receipt:   cell(rec, "receipt"),
			Completed: cell(rec, "completed"),
			Details:   cell(rec, "details"),
			Status:    cell(rec, "status"),
			PaidIn:    cell(rec, "paid_in"),
			Withdrawn: cell(rec, "withdrawn"),
		}
		if _, ok := cols["status"]; !ok {
			row.Status = "Completed"
		}

		tx, err := row.toTransaction(loc)
		if errors.Is(err, errSkipRow) {
			continue
		}
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}
