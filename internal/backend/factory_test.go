package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"painel/internal/config"
	"painel/internal/log"
)

func quietFactory() Factory {
	return NewFactory(log.New(log.Config{Output: io.Discard}))
}

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("memory").IsValid() {
		t.Error("memory should not be valid")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "published,sheets,file" {
		t.Errorf("types = %s", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	app := &config.Config{GridBackend: "file", GridFile: "x.csv", GridFileEncoding: "latin1", FetchTimeout: time.Second}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != FileBackend || cfg.FilePath != "x.csv" || cfg.FileEncoding != "latin1" || cfg.FetchTimeout != time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}

	app.GridBackend = "sqlite"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg  Config
		want string
	}{
		{Config{Type: "x"}, "invalid backend type"},
		{Config{Type: PublishedBackend}, "CSV URL is required"},
		{Config{Type: SheetsBackend}, "Spreadsheet ID is required"},
		{Config{Type: FileBackend}, "file path is required"},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("Validate(%+v) = %v, want %q", tc.cfg, err, tc.want)
		}
	}
}

func TestCreateFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semanas.csv")
	if err := os.WriteFile(path, []byte(",Atividades Semanais - 12/01 a 18/01\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: FileBackend, FilePath: path, FetchTimeout: time.Second})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	rows, err := res.Reader.ReadGrid(context.Background())
	if err != nil || len(rows) != 1 || rows[0][1] != "Atividades Semanais - 12/01 a 18/01" {
		t.Fatalf("ReadGrid = %v, %v", rows, err)
	}
	if err := os.WriteFile(path, []byte(",Atividades Semanais - 19/01 a 25/01\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rows, err = res.Reader.ReadGrid(context.Background())
	if err != nil || rows[0][1] != "Atividades Semanais - 19/01 a 25/01" {
		t.Fatalf("a second read must see the edited file, got %v, %v", rows, err)
	}
}

func TestCreatePublishedBackendRejectsBadURL(t *testing.T) {
	_, err := quietFactory().CreateBackend(context.Background(), Config{Type: PublishedBackend, CSVURL: "ftp://example.com"})
	if err == nil || !strings.Contains(err.Error(), "published backend") {
		t.Errorf("expected published backend error, got %v", err)
	}
}
