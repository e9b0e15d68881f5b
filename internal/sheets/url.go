package sheets

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const exportURLFormat = "https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s"

var (
	spreadsheetPath = regexp.MustCompile(`^/spreadsheets/d/([a-zA-Z0-9_-]+)(?:/.*)?$`)
	spreadsheetID   = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)
	gidFragment     = regexp.MustCompile(`gid=([0-9]+)`)
)

// Locator identifies the sheet a run reads from
type Locator struct {
	SpreadsheetID string // empty for plain CSV URLs
	GID           string // sheet tab, "0" is the first tab
	URL           string // where the CSV export is downloaded from
}

// IsGoogle reports whether the locator points at a Google spreadsheet
func (l *Locator) IsGoogle() bool {
	return l.SpreadsheetID != ""
}

func (l *Locator) String() string {
	return l.URL
}

// ParseURL accepts a spreadsheet URL as copied from the browser, an
// export?format=csv URL, a bare spreadsheet id or any other http(s) URL
// serving CSV.
func ParseURL(raw string) (*Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty sheet URL")
	}

	if spreadsheetID.MatchString(raw) {
		return &Locator{
			SpreadsheetID: raw,
			GID:           "0",
			URL:           fmt.Sprintf(exportURLFormat, raw, "0"),
		}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet URL %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid sheet URL %q - expected something like 'https://docs.google.com/spreadsheets/d/<id>/edit'", raw)
	}

	if u.Host != "docs.google.com" {
		return &Locator{URL: u.String()}, nil
	}

	match := spreadsheetPath.FindStringSubmatch(u.Path)
	if len(match) < 2 {
		return nil, fmt.Errorf("invalid spreadsheet URL %q - expected something like 'https://docs.google.com/spreadsheets/d/<id>/edit'", raw)
	}

	id := match[1]
	gid := u.Query().Get("gid")
	if gid == "" {
		if m := gidFragment.FindStringSubmatch(u.Fragment); len(m) == 2 {
			gid = m[1]
		}
	}
	if gid == "" {
		gid = "0"
	}

	// an export link is used as given so any extra parameters survive
	if strings.HasSuffix(u.Path, "/export") && u.Query().Get("format") == "csv" {
		return &Locator{SpreadsheetID: id, GID: gid, URL: u.String()}, nil
	}

	return &Locator{
		SpreadsheetID: id,
		GID:           gid,
		URL:           fmt.Sprintf(exportURLFormat, id, gid),
	}, nil
}
