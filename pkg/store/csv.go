package store

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingColumn is returned when a CSV file lacks a required column
var ErrMissingColumn = errors.New("missing column")

// table is a CSV file read as a header and data rows
type table struct {
	header []string
	rows   [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return &table{}, nil
	}
	return &table{header: records[0], rows: records[1:]}, nil
}

// column returns the index of name in the header
func (t *table) column(name string) (int, error) {
	for i, h := range t.header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", name, ErrMissingColumn)
}

// cell returns row[i], or "" for short rows
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// appendRows appends rows to path, writing header first when the file is
// new or empty.
func appendRows(path string, header []string, rows [][]string, crlf bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s failed: %w", path, err)
	}
	defer closeFile(f, path, &err)

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s failed: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = crlf
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s failed: %w", path, err)
	}
	return nil
}

// writeRows replaces path with header and rows.
func writeRows(path string, header []string, rows [][]string, quoteAll bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s failed: %w", path, err)
	}
	defer closeFile(f, path, &err)

	if quoteAll {
		bw := bufio.NewWriter(f)
		for _, row := range append([][]string{header}, rows...) {
			writeQuotedRow(bw, row)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write %s failed: %w", path, err)
		}
		return nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s failed: %w", path, err)
	}
	return nil
}

// closeFile closes a written file and reports a failed close through err
// unless an earlier error is already set.
func closeFile(f io.Closer, path string, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s failed: %w", path, cerr)
	}
}

// writeQuotedRow writes a row with every field quoted. encoding/csv only
// quotes when needed.
func writeQuotedRow(w io.Writer, row []string) {
	for i, field := range row {
		if i > 0 {
			io.WriteString(w, ",")
		}
		io.WriteString(w, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`)
	}
	io.WriteString(w, "\n")
}
