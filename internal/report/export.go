package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wb-finances/wb-finances-mcp-server/internal/wb"
)

// ErrNoRows is returned when exporting an empty row set.
var ErrNoRows = errors.New("no data to save")

// DefaultCSVName is the file name used when none is given.
func DefaultCSVName(now time.Time) string {
	return fmt.Sprintf("sales_report_%s.csv", now.Format("2006-01-02"))
}

// WriteCSV writes rows with one column per report field, in field declaration order.
// Values are the upstream JSON scalars; absent optional fields are empty cells.
func WriteCSV(w io.Writer, rows []wb.ReportRow) error {
	fields := wb.ReportFields()
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}

	record := make([]string, len(fields))
	for i, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		for j, f := range fields {
			record[j] = cell(obj[f])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v json.RawMessage) string {
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return string(v)
}

// SaveCSV writes rows to path (DefaultCSVName when empty) and returns the absolute path.
func SaveCSV(path string, rows []wb.ReportRow) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRows
	}
	if path == "" {
		path = DefaultCSVName(time.Now())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	buf := bufio.NewWriter(f)
	if err := WriteCSV(buf, rows); err != nil {
		f.Close()
		return "", err
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
