package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/data-lake-api/internal/schema"
)

// ErrSchemaViolation indicates the input cannot be made to fit the schema:
// a required column is missing from the header, or a cell is empty in a
// column that has no configured fill value.
var ErrSchemaViolation = errors.New("schema violation")

// Normalize coerces a raw table to the given schema. Input columns may come
// in any order and extra columns are dropped; output columns follow
// s.Columns exactly. Empty cells take the schema's fill value when one is
// configured and fail otherwise. Non-empty cells that cannot be coerced to
// their declared type become the empty-string null sentinel and are counted
// in NormalizedTable.Warnings. Row order is preserved.
func Normalize(raw RawTable, s schema.RecordTypeSchema) (NormalizedTable, error) {
	colIdx := make(map[string]int, len(raw.Header))
	for i, name := range raw.Header {
		colIdx[strings.TrimSpace(name)] = i
	}
	pick := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		idx, ok := colIdx[col]
		if !ok {
			return NormalizedTable{}, fmt.Errorf("%w: missing column %q in header", ErrSchemaViolation, col)
		}
		pick[i] = idx
	}

	out := NormalizedTable{
		Columns: s.Columns,
		Rows:    make([][]string, 0, len(raw.Rows)),
	}
	for rowNum, row := range raw.Rows {
		cells := make([]string, len(s.Columns))
		for i, col := range s.Columns {
			var cell string
			if idx := pick[i]; idx < len(row) {
				cell = strings.TrimSpace(row[idx])
			}
			if cell == "" {
				fill, ok := s.MissingValueFill[col]
				if !ok {
					return NormalizedTable{}, fmt.Errorf(
						"%w: row %d: empty value in required column %q", ErrSchemaViolation, rowNum+1, col)
				}
				cells[i] = fill
				continue
			}
			coerced, ok := coerce(cell, s.Types[col], s.DateFormat[col])
			if !ok {
				// Dirty cell: null it out rather than failing the upload.
				cells[i] = ""
				out.Warnings++
				continue
			}
			cells[i] = coerced
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// coerce validates and canonicalizes a single non-empty cell.
func coerce(cell string, typ schema.ColumnType, dateLayout string) (string, bool) {
	switch typ {
	case schema.TypeInteger:
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	case schema.TypeTimestamp:
		layout := dateLayout
		if layout == "" {
			layout = time.RFC3339
		}
		t, err := time.Parse(layout, cell)
		if err != nil {
			return "", false
		}
		return t.UTC().Format(time.RFC3339), true
	default:
		return cell, true
	}
}
