package source

// Format identifies a statement file layout.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
)

// RawTransaction is one line of a JSONL transaction export.
type RawTransaction struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Type        string `json:"type,omitempty"` // dashboard exports use "type"
	Amount      int64  `json:"amount"`
	OccurredAt  string `json:"occurred_at"`
	Date        string `json:"date,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	Description string `json:"description,omitempty"`
	SenderName  string `json:"sender_name,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Source      string `json:"source,omitempty"`
	IsRecurring bool   `json:"is_recurring,omitempty"`
}

// DiscoveredFile represents a statement file found during directory scanning.
type DiscoveredFile struct {
	Path    string
	Format  Format
	Account string // directory the file sits in, relative to the data dir
}
