package exports

import (
	"time"

	"github.com/google/uuid"
)

// CreateExportRequest is the request to render a menu or a journal.
// Menu exports need MenuID; journal exports need From and To and may name
// a client in UserID.
type CreateExportRequest struct {
	Kind   string `json:"kind"`   // "menu" or "journal"
	Format string `json:"format"` // "pdf" or "csv"
	MenuID string `json:"menuId,omitempty"`
	UserID string `json:"userId,omitempty"`
	From   string `json:"from,omitempty"` // YYYY-MM-DD
	To     string `json:"to,omitempty"`   // YYYY-MM-DD
}

// ExportDTO is the response representation of an export.
type ExportDTO struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Format      string    `json:"format"`
	SubjectID   string    `json:"subjectId"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	SizeBytes   int64     `json:"sizeBytes"`
	Status      string    `json:"status"`
	Error       *string   `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExportsResponse is the list response.
type ExportsResponse struct {
	Exports []ExportDTO `json:"exports"`
}

const (
	KindMenu    = "menu"
	KindJournal = "journal"

	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady  = "ready"
	StatusFailed = "failed"
)

func contentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}
