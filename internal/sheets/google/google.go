// Package google reads the worksheet through the Sheets API v4, with either
// service account or OAuth user credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "painel/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// valuesGetter is the slice of the Sheets API the reader needs.
type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

type apiValues struct {
	svc *gsheet.Service
}

func (a apiValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

type Client struct {
	values        valuesGetter
	spreadsheetID string
	readRange     string
}

var _ ports.GridReader = (*Client)(nil)

// DefaultRange covers the whole first sheet; the API trims trailing empties.
const DefaultRange = "A:Z"

// NewFromEnv creates a Sheets client for spreadsheetID and readRange.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, readRange string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(apiValues{svc: svc}, spreadsheetID, readRange), nil
}

func newClient(values valuesGetter, spreadsheetID, readRange string) *Client {
	readRange = strings.TrimSpace(readRange)
	if readRange == "" {
		readRange = DefaultRange
	}
	return &Client{values: values, spreadsheetID: spreadsheetID, readRange: readRange}
}

// newSheetsService initializes a read-only Sheets Service. OAuth user
// credentials win when an OAuth client is configured; otherwise a Service
// Account is required.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	ts, ok, err := oauthTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		slog.DebugContext(ctx, "Creating Google Sheets service with OAuth token",
			"scope", gsheet.SpreadsheetsReadonlyScope)
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	credentialsJSON, err := loadCredentials(serviceAccountJSON, serviceAccountFile)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// loadCredentials prefers inline JSON over a file path.
func loadCredentials(inline, path string) ([]byte, error) {
	switch {
	case inline != "":
		return []byte(inline), nil
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Source implements sheets.Named.
func (c *Client) Source() string {
	return "sheets:" + c.spreadsheetID + "!" + c.readRange
}

// ReadGrid reads readRange and flattens the values to text.
func (c *Client) ReadGrid(ctx context.Context) ([][]string, error) {
	if c.values == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.values.Get(ctx, c.spreadsheetID, c.readRange)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.readRange, err)
	}
	if len(values) == 0 {
		return nil, ports.ErrEmptyGrid
	}

	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = toStrings(row)
	}
	return rows, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
