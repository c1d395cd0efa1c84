package models

import "time"

// StatementFormat is a client statement file type.
type StatementFormat string

const (
	StatementFormatCSV StatementFormat = "csv"
	StatementFormatPDF StatementFormat = "pdf"
)

// Valid reports whether f is a supported format.
func (f StatementFormat) Valid() bool {
	return f == StatementFormatCSV || f == StatementFormatPDF
}

// StatementExport describes a rendered statement and its download link.
type StatementExport struct {
	ClientID  string          `json:"client_id"`
	Format    StatementFormat `json:"format"`
	URL       string          `json:"url"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}
