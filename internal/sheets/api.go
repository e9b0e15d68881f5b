package sheets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// APIOptions selects how the Sheets API client authenticates. The first of
// HTTPClient, CredentialsFile and APIKey that is set wins.
type APIOptions struct {
	APIKey          string
	CredentialsFile string // service account or authorized user JSON
	HTTPClient      *http.Client
	Endpoint        string
}

// APIClient reads a sheet range through the Google Sheets API
type APIClient struct {
	service *gsheets.Service
	locator *Locator
	area    string
}

func NewAPIClient(ctx context.Context, locator *Locator, area string, opts APIOptions) (*APIClient, error) {
	if locator == nil || !locator.IsGoogle() {
		return nil, fmt.Errorf("the Sheets API needs a Google spreadsheet URL or id")
	}

	var options []option.ClientOption

	switch {
	case opts.HTTPClient != nil:
		options = append(options, option.WithHTTPClient(opts.HTTPClient))

	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}

		creds, err := google.CredentialsFromJSON(ctx, b, gsheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
		options = append(options, option.WithCredentials(creds))

	case opts.APIKey != "":
		options = append(options, option.WithAPIKey(opts.APIKey))

	default:
		return nil, fmt.Errorf("no API key or credentials configured")
	}

	if opts.Endpoint != "" {
		options = append(options, option.WithEndpoint(opts.Endpoint))
	}

	service, err := gsheets.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return &APIClient{
		service: service,
		locator: locator,
		area:    area,
	}, nil
}

func (c *APIClient) Name() string {
	if c.area != "" {
		return fmt.Sprintf("spreadsheet %s range %s", c.locator.SpreadsheetID, c.area)
	}
	return fmt.Sprintf("spreadsheet %s tab %s", c.locator.SpreadsheetID, c.locator.GID)
}

// Fetch reads the configured range, or the whole tab named by the locator's
// gid when no range is set. Every failure is returned as a *FetchError.
func (c *APIClient) Fetch(ctx context.Context) ([][]string, error) {
	area := c.area
	if area == "" {
		title, err := c.sheetTitle(ctx)
		if err != nil {
			return nil, fetchError(c.Name(), err)
		}
		area = quoteSheetName(title)
	}

	response, err := c.service.Spreadsheets.Values.
		Get(c.locator.SpreadsheetID, area).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fetchError(c.Name(), fmt.Errorf("unable to retrieve data from sheet (%w)", err))
	}

	if len(response.Values) == 0 {
		return nil, fetchError(c.Name(), ErrNoData)
	}

	return toRows(response.Values), nil
}

func (c *APIClient) sheetTitle(ctx context.Context) (string, error) {
	spreadsheet, err := c.service.Spreadsheets.
		Get(c.locator.SpreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	gid, err := strconv.ParseInt(c.locator.GID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid gid %q", c.locator.GID)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.SheetId == gid {
			return sheet.Properties.Title, nil
		}
	}

	return "", fmt.Errorf("unable to identify worksheet for gid %s", c.locator.GID)
}

// quoteSheetName makes a tab title usable as an A1 range, so that tabs named
// like a cell ("B2") or holding "!" or "'" read the whole tab.
func quoteSheetName(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				rows[i][j] = fmt.Sprintf("%v", v)
			}
		}
	}
	return rows
}
