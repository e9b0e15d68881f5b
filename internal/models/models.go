package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptySheet is returned when the sheet does not even hold its title and header rows.
var ErrEmptySheet = errors.New("sheet has no header or data rows")

// Schema holds the zero-based positions of the columns the pipeline reads and rewrites
type Schema struct {
	KeyColumn   int // Column A - identifier, empty for new rows
	PhoneColumn int // Column F - contact number
}

// DefaultSchema matches the layout of the sign-up sheet export
func DefaultSchema() Schema {
	return Schema{
		KeyColumn:   0,
		PhoneColumn: 5,
	}
}

// Layout describes how the raw rows of a sheet are split up
type Layout struct {
	SkipRows   int // leading title rows that are discarded
	HeaderRows int // rows copied verbatim into the output
	Schema     Schema
}

// DefaultLayout drops the title row and keeps the second row as header.
func DefaultLayout() Layout {
	return Layout{
		SkipRows:   1,
		HeaderRows: 1,
		Schema:     DefaultSchema(),
	}
}

// ParseColumn resolves a column reference such as "A", "f", "AB" or a
// 1-based number such as "6" to a zero-based index.
func ParseColumn(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("empty column reference")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("column number must be 1 or greater, got %d", n)
		}
		return n - 1, nil
	}

	n, err := excelize.ColumnNameToNumber(strings.ToUpper(ref))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", ref, err)
	}

	return n - 1, nil
}

// Record is one data row of the sheet with its key and phone cells resolved
type Record struct {
	Row   int      // 1-based row number in the source sheet
	ID    string   // Key cell
	Phone string   // Phone cell
	Cells []string // Every cell of the row as fetched
}

// ParseRecordRow resolves the schema columns of a raw row. Missing cells read as "".
func ParseRecordRow(row []string, rowNum int, schema Schema) Record {
	cells := make([]string, len(row))
	copy(cells, row)

	return Record{
		Row:   rowNum,
		ID:    cell(cells, schema.KeyColumn),
		Phone: cell(cells, schema.PhoneColumn),
		Cells: cells,
	}
}

// HasID reports whether the key cell holds anything other than whitespace
func (r Record) HasID() bool {
	return strings.TrimSpace(r.ID) != ""
}

// Values returns a fresh copy of the row with ID and Phone written back into
// their schema columns. The row is widened if it was too short to hold them.
func (r Record) Values(schema Schema) []string {
	width := len(r.Cells)
	if schema.KeyColumn >= width {
		width = schema.KeyColumn + 1
	}
	if schema.PhoneColumn >= width {
		width = schema.PhoneColumn + 1
	}

	values := make([]string, width)
	copy(values, r.Cells)
	values[schema.KeyColumn] = r.ID
	values[schema.PhoneColumn] = r.Phone

	return values
}

// Table is a sheet split into header rows and data records
type Table struct {
	Header  [][]string
	Records []Record
	Schema  Schema
}

// NewTable splits raw sheet rows according to layout. Rows in which every
// cell is blank are dropped, Google pads CSV exports with them.
func NewTable(data [][]string, layout Layout) (*Table, error) {
	if layout.SkipRows < 0 || layout.HeaderRows < 0 {
		return nil, fmt.Errorf("invalid layout: skip=%d header=%d", layout.SkipRows, layout.HeaderRows)
	}

	if layout.Schema.KeyColumn < 0 || layout.Schema.PhoneColumn < 0 {
		return nil, fmt.Errorf("invalid schema: key=%d phone=%d", layout.Schema.KeyColumn, layout.Schema.PhoneColumn)
	}

	start := layout.SkipRows + layout.HeaderRows
	if len(data) < start || len(data) == 0 {
		return nil, ErrEmptySheet
	}

	t := &Table{
		Schema: layout.Schema,
	}

	for _, row := range data[layout.SkipRows:start] {
		header := make([]string, len(row))
		copy(header, row)
		t.Header = append(t.Header, header)
	}

	for i := start; i < len(data); i++ {
		if isBlank(data[i]) {
			continue
		}
		t.Records = append(t.Records, ParseRecordRow(data[i], i+1, layout.Schema))
	}

	return t, nil
}

func cell(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return row[index]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
