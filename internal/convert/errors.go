package convert

import (
	"errors"
	"fmt"

	"github.com/pmurley/sheetfill/internal/models"
	"github.com/pmurley/sheetfill/internal/pipeline"
	"github.com/pmurley/sheetfill/internal/sheets"
)

// Describe turns a Convert, Preview or Pending error into a message for the
// person who asked for the run.
func Describe(err error) string {
	var fetchErr *sheets.FetchError

	switch {
	case err == nil:
		return ""

	case errors.Is(err, pipeline.ErrNoRows):
		return "No rows to process - every row already has an ID."

	case errors.Is(err, ErrNoSheet):
		return "No sheet to read - pass a sheet URL or set SHEET_URL."

	case errors.Is(err, sheets.ErrNotShared):
		return "Could not read the sheet - it is not shared. Share it as 'Anyone with the link' or configure API credentials."

	case errors.Is(err, sheets.ErrNoData), errors.Is(err, models.ErrEmptySheet):
		return "The sheet is empty - there is no header or data to process."

	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Failed to load the sheet: %v", fetchErr.Err)

	default:
		return fmt.Sprintf("Conversion failed: %v", err)
	}
}
