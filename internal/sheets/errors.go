package sheets

import (
	"errors"
	"fmt"
)

var (
	// ErrNotShared is returned when Google answers with a sign-in page instead of CSV
	ErrNotShared = errors.New("sheet is not shared publicly")

	// ErrNoData is returned when the sheet or range holds no rows at all
	ErrNoData = errors.New("no data in sheet")
)

// FetchError wraps every failure to read the source table
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchError(source string, err error) error {
	return &FetchError{Source: source, Err: err}
}
