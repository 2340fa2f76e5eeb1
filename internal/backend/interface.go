package backend

import (
	"time"

	"painel/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the grid source ready for the dashboard service.
type BackendResult struct {
	Reader  sheets.GridReader
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// published
	CSVURL string

	// sheets
	SpreadsheetID string
	SheetRange    string

	// file
	FilePath     string
	FileSheet    string
	FileEncoding string

	FetchTimeout time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	PublishedBackend BackendType = "published"
	SheetsBackend    BackendType = "sheets"
	FileBackend      BackendType = "file"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case PublishedBackend, SheetsBackend, FileBackend:
		return true
	default:
		return false
	}
}
