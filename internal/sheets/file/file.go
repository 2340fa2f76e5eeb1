// Package file reads the worksheet from a local export: CSV (UTF-8 or
// Latin-1) or an Excel workbook.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ports "painel/internal/sheets"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding of CSV exports.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

// Options selects what to read from the file.
type Options struct {
	Sheet    string // workbook sheet; first sheet when empty
	Encoding string // CSV only
}

// Reader re-reads the file on every call so edits are picked up by refetch.
type Reader struct {
	path string
	opts Options
	xlsx bool
}

var _ ports.GridReader = (*Reader)(nil)

// New checks the extension and encoding up front. The file itself is opened
// on each read.
func New(path string, opts Options) (*Reader, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("missing GRID_FILE")
	}

	r := &Reader{path: path, opts: opts}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
	case ".xlsx", ".xlsm":
		r.xlsx = true
	default:
		return nil, fmt.Errorf("unsupported grid file %q: want .csv or .xlsx", filepath.Base(path))
	}

	switch strings.ToLower(opts.Encoding) {
	case "", EncodingUTF8, "utf8":
		r.opts.Encoding = EncodingUTF8
	case EncodingLatin1, "iso-8859-1":
		r.opts.Encoding = EncodingLatin1
	default:
		return nil, fmt.Errorf("unsupported encoding %q: want utf-8 or latin1", opts.Encoding)
	}
	return r, nil
}

// Source implements sheets.Named.
func (r *Reader) Source() string {
	return "file:" + filepath.Base(r.path)
}

func (r *Reader) ReadGrid(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer f.Close()

	var rows [][]string
	if r.xlsx {
		rows, err = r.readWorkbook(f)
	} else {
		rows, err = r.readCSV(f)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrEmptyGrid
	}
	return rows, nil
}

func (r *Reader) readCSV(in io.Reader) ([][]string, error) {
	if r.opts.Encoding == EncodingLatin1 {
		in = transform.NewReader(in, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return rows, nil
}

func (r *Reader) readWorkbook(in io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := r.opts.Sheet
	if sheet == "" {
		list := wb.GetSheetList()
		if len(list) == 0 {
			return nil, ports.ErrEmptyGrid
		}
		sheet = list[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
