package source

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// pdfRowPattern matches a statement row once the PDF text is flattened:
// receipt, completion time, details, status, then two or three amounts
// (paid in, withdrawn, balance or signed amount, balance).
var pdfRowPattern = regexp.MustCompile(
	`^([A-Z0-9]{10})\s+(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+(.+?)\s+(Completed|Failed|Pending|Reversed|Cancelled)\s+(-?[\d,]+\.\d{2})\s+(-?[\d,]+\.\d{2})(?:\s+(-?[\d,]+\.\d{2}))?$`,
)

func parsePDF(path string, loc *time.Location) ParseResult {
	f, r, err := pdf.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}
	return parseStatementLines(lines, loc)
}

// parseStatementLines extracts transactions from flattened statement text.
// Lines that do not look like rows are ignored; rows that match but fail to
// convert count as parse errors.
func parseStatementLines(lines []string, loc *time.Location) ParseResult {
	var res ParseResult
	for _, line := range lines {
		m := pdfRowPattern.FindStringSubmatch(strings.Join(strings.Fields(line), " "))
		if m == nil {
			continue
		}

		row := statementRow{
			Receipt:   m[1],
			Completed: m[2],
			Details:   m[3],
			Status:    m[4],
		}
		if m[7] != "" {
			row.PaidIn, row.Withdrawn = m[5], m[6]
		} else if strings.HasPrefix(m[5], "-") {
			row.Withdrawn = m[5]
		} else {
			row.PaidIn = m[5]
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
