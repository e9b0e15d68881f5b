package sheets

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultTimeout = 30 * time.Second

// Client fetches data from public Google Sheets using CSV export
type Client struct {
	locator    *Locator
	httpClient *http.Client
}

func NewClient(sheetURL string) (*Client, error) {
	locator, err := ParseURL(sheetURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		locator: locator,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// WithHTTPClient replaces the default HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Name() string {
	return c.locator.String()
}

// Fetch downloads the sheet. Every failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context) ([][]string, error) {
	data, err := c.GetSheetDataCSV(ctx, c.locator.URL)
	if err != nil {
		return nil, fetchError(c.Name(), err)
	}

	return data, nil
}

// GetSheetDataCSV fetches url and parses the body as CSV
func (c *Client) GetSheetDataCSV(ctx context.Context, url string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body := bufio.NewReader(resp.Body)
	if isHTML(resp.Header.Get("Content-Type"), body) {
		return nil, notSharedError(body)
	}

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	var data [][]string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		data = append(data, record)
	}

	if len(data) == 0 {
		return nil, ErrNoData
	}

	return data, nil
}

// isHTML detects the login or error page Google serves, with status 200,
// for sheets that are not shared.
func isHTML(contentType string, body *bufio.Reader) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}

	head, _ := body.Peek(512)
	head = bytes.ToLower(bytes.TrimSpace(head))

	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func notSharedError(body io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return ErrNotShared
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ErrNotShared
	}

	return fmt.Errorf("%w (got page %q)", ErrNotShared, title)
}
