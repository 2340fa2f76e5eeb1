package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ports "painel/internal/sheets"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestNewValidates(t *testing.T) {
	cases := []struct {
		name string
		path string
		opts Options
	}{
		{"empty path", "", Options{}},
		{"unknown extension", "grid.ods", Options{}},
		{"unknown encoding", "grid.csv", Options{Encoding: "utf-16"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.path, tc.opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReadCSVUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	if err := os.WriteFile(path, []byte("Condomínio/Síndico,Valor\nJoão,\"R$ 4.500,00\",FALSE\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := New(path, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rows, err := r.ReadGrid(context.Background())
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if rows[0][0] != "Condomínio/Síndico" || rows[1][1] != "R$ 4.500,00" || len(rows[1]) != 3 {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestReadCSVLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("Prospecção,Síndicos\n")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "grid.csv")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatal(err)
	}

	r, _ := New(path, Options{Encoding: "LATIN1"})
	rows, err := r.ReadGrid(context.Background())
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if rows[0][0] != "Prospecção" || rows[0][1] != "Síndicos" {
		t.Errorf("decoded = %v", rows[0])
	}
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	wb := excelize.NewFile()
	if _, err := wb.NewSheet("Semanas"); err != nil {
		t.Fatal(err)
	}
	wb.SetCellValue("Sheet1", "A1", "ignored")
	wb.SetCellValue("Semanas", "B1", "Atividades Semanais - 12/01 a 18/01")
	wb.SetCellValue("Semanas", "B2", "Luna")
	wb.SetCellValue("Semanas", "C2", "2200")
	if err := wb.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	wb.Close()

	r, _ := New(path, Options{Sheet: "Semanas"})
	rows, err := r.ReadGrid(context.Background())
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if len(rows) != 2 || rows[0][1] != "Atividades Semanais - 12/01 a 18/01" || rows[1][2] != "2200" {
		t.Errorf("unexpected rows %v", rows)
	}

	first, _ := New(path, Options{})
	rows, err = first.ReadGrid(context.Background())
	if err != nil || rows[0][0] != "ignored" {
		t.Errorf("first sheet: rows=%v err=%v", rows, err)
	}

	missing, _ := New(path, Options{Sheet: "Nope"})
	if _, err := missing.ReadGrid(context.Background()); err == nil {
		t.Error("expected error for unknown sheet")
	}
}

func TestReadGridMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	r, _ := New(filepath.Join(dir, "absent.csv"), Options{})
	if _, err := r.ReadGrid(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	empty := filepath.Join(dir, "empty.csv")
	os.WriteFile(empty, nil, 0o644)
	r, _ = New(empty, Options{})
	if _, err := r.ReadGrid(context.Background()); !errors.Is(err, ports.ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
}

func TestReadGridCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _ := New("grid.csv", Options{})
	if _, err := r.ReadGrid(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
