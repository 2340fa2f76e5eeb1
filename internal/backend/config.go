package backend

import (
	"errors"
	"fmt"

	"painel/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.GridBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.GridBackend)
	}

	return Config{
		Type: backendType,

		CSVURL: appConfig.SheetCSVURL,

		SpreadsheetID: appConfig.SpreadsheetID,
		SheetRange:    appConfig.SheetRange,

		FilePath:     appConfig.GridFile,
		FileSheet:    appConfig.GridFileSheet,
		FileEncoding: appConfig.GridFileEncoding,

		FetchTimeout: appConfig.FetchTimeout,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case PublishedBackend:
		if c.CSVURL == "" {
			return errors.New("CSV URL is required for published backend")
		}
	case SheetsBackend:
		if c.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	case FileBackend:
		if c.FilePath == "" {
			return errors.New("file path is required for file backend")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{PublishedBackend, SheetsBackend, FileBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
