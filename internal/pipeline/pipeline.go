// Package pipeline turns the rows of a sign-up sheet that have no identifier
// yet into keyed records with normalized contact numbers.
//
// The pipeline is a pure function of the table and the run date. Nothing is
// fetched or written here and the input table is never modified.
package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pmurley/sheetfill/internal/models"
)

// DateLayout is the date prefix of every generated identifier
const DateLayout = "20060102"

// ErrNoRows is returned when no row of the table is waiting for an identifier
var ErrNoRows = errors.New("no rows to process")

// Result is the output of a pipeline run
type Result struct {
	Header  [][]string
	Records []models.Record
	Schema  models.Schema
	Date    time.Time
}

// Rows returns the header rows followed by every record with its ID and phone
// written back into place.
func (r *Result) Rows() [][]string {
	rows := make([][]string, 0, len(r.Header)+len(r.Records))
	for _, h := range r.Header {
		row := make([]string, len(h))
		copy(row, h)
		rows = append(rows, row)
	}

	for _, rec := range r.Records {
		rows = append(rows, rec.Values(r.Schema))
	}

	return rows
}

// SelectRows returns the records whose key cell is empty, missing or blank,
// in their original order.
func SelectRows(records []models.Record) []models.Record {
	var selected []models.Record
	for _, r := range records {
		if !r.HasID() {
			selected = append(selected, r)
		}
	}
	return selected
}

// AssignIDs returns n identifiers made of the date and a sequence number
// 1..n. The sequence is zero padded to two digits, or to the width of n when
// more than 99 rows are keyed in one run so that identifiers stay unique and
// sort in sequence order.
func AssignIDs(n int, date time.Time) []string {
	if n <= 0 {
		return nil
	}

	width := len(strconv.Itoa(n))
	if width < 2 {
		width = 2
	}

	prefix := date.Format(DateLayout)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%0*d", prefix, width, i+1)
	}

	return ids
}

// Run selects the unkeyed records of table, gives them identifiers for date
// and normalizes their phone cells. ErrNoRows is returned when nothing is
// selected.
func Run(table *models.Table, date time.Time) (*Result, error) {
	if table == nil {
		return nil, fmt.Errorf("nil table")
	}

	selected := SelectRows(table.Records)
	if len(selected) == 0 {
		return nil, ErrNoRows
	}

	ids := AssignIDs(len(selected), date)

	records := make([]models.Record, len(selected))
	for i, r := range selected {
		cells := make([]string, len(r.Cells))
		copy(cells, r.Cells)

		records[i] = models.Record{
			Row:   r.Row,
			ID:    ids[i],
			Phone: NormalizePhone(r.Phone),
			Cells: cells,
		}
	}

	header := make([][]string, len(table.Header))
	for i, h := range table.Header {
		header[i] = make([]string, len(h))
		copy(header[i], h)
	}

	return &Result{
		Header:  header,
		Records: records,
		Schema:  table.Schema,
		Date:    date,
	}, nil
}

// Pending counts the records of table that are waiting for an identifier
func Pending(table *models.Table) int {
	if table == nil {
		return 0
	}
	return len(SelectRows(table.Records))
}
