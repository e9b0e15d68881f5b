// Package xlsx writes a processed table as a bordered, auto-sized workbook.
package xlsx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	MinColumnWidth = 8
	MaxColumnWidth = 80
	columnMargin   = 2

	// excelize border style 1 is "thin"
	thinBorder = 1
)

// Options controls the layout of the generated workbook
type Options struct {
	SheetName string
}

// VisualWidth counts characters at or below U+00FF as one column and every
// other character as two.
func VisualWidth(s string) int {
	width := 0
	for _, r := range s {
		if r <= 0xFF {
			width++
		} else {
			width += 2
		}
	}
	return width
}

// ColumnWidths returns the clamped display width of every column in rows.
func ColumnWidths(rows [][]string) []float64 {
	columns := 0
	for _, row := range rows {
		if len(row) > columns {
			columns = len(row)
		}
	}

	widths := make([]float64, columns)
	for c := 0; c < columns; c++ {
		longest := 0
		for _, row := range rows {
			if c < len(row) {
				if w := VisualWidth(row[c]); w > longest {
					longest = w
				}
			}
		}

		widths[c] = float64(clamp(longest+columnMargin, MinColumnWidth, MaxColumnWidth))
	}

	return widths
}

// Build lays rows out on a single sheet starting at A1. Every cell up to the
// widest row gets a thin border and each column is sized by ColumnWidths.
func Build(rows [][]string, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := f.GetSheetName(0)
	if opts.SheetName != "" && opts.SheetName != sheet {
		if err := f.SetSheetName(sheet, opts.SheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("renaming sheet: %w", err)
		}
		sheet = opts.SheetName
	}

	widths := ColumnWidths(rows)

	for i, row := range rows {
		values := make([]interface{}, len(widths))
		for c := range values {
			if c < len(row) {
				values[c] = row[c]
			} else {
				values[c] = ""
			}
		}

		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}

		if err := f.SetSheetRow(sheet, ref, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if len(rows) == 0 || len(widths) == 0 {
		return f, nil
	}

	style, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: thinBorder},
			{Type: "right", Color: "000000", Style: thinBorder},
			{Type: "top", Color: "000000", Style: thinBorder},
			{Type: "bottom", Color: "000000", Style: thinBorder},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating border style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(widths), len(rows))
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		f.Close()
		return nil, fmt.Errorf("applying borders: %w", err)
	}

	for c, width := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			f.Close()
			return nil, err
		}

		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	return f, nil
}

// Write builds the workbook for rows and writes it to w.
func Write(w io.Writer, rows [][]string, opts Options) error {
	f, err := Build(rows, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

// Bytes is Write into memory
func Bytes(rows [][]string, opts Options) ([]byte, error) {
	var b bytes.Buffer
	if err := Write(&b, rows, opts); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
