package backend

import (
	"context"
	"fmt"

	"painel/internal/log"
	"painel/internal/sheets"
	"painel/internal/sheets/dedup"
	"painel/internal/sheets/file"
	gsheet "painel/internal/sheets/google"
	"painel/internal/sheets/published"
)

// Factory creates grid sources based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend builds the configured source and puts the download de-dup
// in front of it.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		src sheets.GridReader
		err error
	)
	switch config.Type {
	case PublishedBackend:
		src, err = published.New(config.CSVURL)
	case SheetsBackend:
		src, err = gsheet.NewFromEnv(ctx, config.SpreadsheetID, config.SheetRange)
	case FileBackend:
		src, err = file.New(config.FilePath, file.Options{Sheet: config.FileSheet, Encoding: config.FileEncoding})
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	reader := dedup.New(src, config.FetchTimeout)
	f.logger.Info("Initialized grid backend",
		"type", config.Type.String(),
		log.FieldSource, reader.Source(),
		"fetch_timeout", config.FetchTimeout.String())

	return &BackendResult{Reader: reader}, nil
}
