package sheets

import (
	"context"
)

// Source yields the raw rows of a sheet
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([][]string, error)
}

// Options configures NewSource
type Options struct {
	APIKey          string
	CredentialsFile string
	Range           string
}

func (o Options) useAPI() bool {
	return o.APIKey != "" || o.CredentialsFile != ""
}

// NewSource returns a Sheets API client when an API key or credentials are
// configured and sheetURL names a Google spreadsheet, and a CSV export client
// otherwise.
func NewSource(ctx context.Context, sheetURL string, opts Options) (Source, error) {
	locator, err := ParseURL(sheetURL)
	if err != nil {
		return nil, err
	}

	if opts.useAPI() && locator.IsGoogle() {
		return NewAPIClient(ctx, locator, opts.Range, APIOptions{
			APIKey:          opts.APIKey,
			CredentialsFile: opts.CredentialsFile,
		})
	}

	return NewClient(sheetURL)
}
