package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "1AbCdEfGhIjKlMnOpQrStUvWxYz0123456789_-ab"

func TestParseURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		gid  string
		url  string
	}{
		{
			name: "bare id",
			raw:  testID,
			gid:  "0",
			url:  "https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv&gid=0",
		},
		{
			name: "edit link",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID + "/edit",
			gid:  "0",
			url:  "https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv&gid=0",
		},
		{
			name: "edit link with tab",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID + "/edit#gid=286507798",
			gid:  "286507798",
			url:  "https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv&gid=286507798",
		},
		{
			name: "edit link with query gid",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID + "/edit?gid=42#gid=42",
			gid:  "42",
			url:  "https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv&gid=42",
		},
		{
			name: "export link",
			raw:  "  https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv  ",
			gid:  "0",
			url:  "https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv",
		},
		{
			name: "no trailing path",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID,
			gid:  "0",
			url:  "https://docs.google.com/spreadsheets/d/" + testID + "/export?format=csv&gid=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locator, err := ParseURL(tt.raw)
			require.NoError(t, err)

			assert.True(t, locator.IsGoogle())
			assert.Equal(t, testID, locator.SpreadsheetID)
			assert.Equal(t, tt.gid, locator.GID)
			assert.Equal(t, tt.url, locator.URL)
		})
	}
}

func TestParseURLWithPlainCSV(t *testing.T) {
	locator, err := ParseURL("https://example.com/exports/signups.csv")
	require.NoError(t, err)

	assert.False(t, locator.IsGoogle())
	assert.Equal(t, "https://example.com/exports/signups.csv", locator.URL)
}

func TestParseURLInvalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not a url",
		"ftp://docs.google.com/spreadsheets/d/" + testID,
		"https://docs.google.com/document/d/" + testID + "/edit",
		"https://docs.google.com/spreadsheets/",
	} {
		_, err := ParseURL(raw)
		assert.Error(t, err, "expected error for %q", raw)
	}
}
