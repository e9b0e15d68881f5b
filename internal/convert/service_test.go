package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pmurley/sheetfill/internal/cache"
	"github.com/pmurley/sheetfill/internal/config"
	"github.com/pmurley/sheetfill/internal/models"
	"github.com/pmurley/sheetfill/internal/pipeline"
	"github.com/pmurley/sheetfill/internal/sheets"
	"github.com/pmurley/sheetfill/internal/storage"
	"github.com/pmurley/sheetfill/internal/xlsx"
	"github.com/pmurley/sheetfill/pkg/logger"
)

const sheetURL = "https://example.com/signups.csv"

var signups = [][]string{
	{"Sign-ups 2024", "", "", "", "", ""},
	{"ID", "Name", "Class", "Date", "Email", "Phone"},
	{"2023123101", "Kim", "A", "2023-12-31", "kim@example.com", "010-1111-2222"},
	{"", "Lee", "B", "2024-01-01", "lee@example.com", "01012345678"},
	{"2023123102", "Park", "A", "2023-12-31", "park@example.com", "010-3333-4444"},
	{"", "Choi", "C", "2024-01-01", "choi@example.com", "+821098765432"},
	{"2023123103", "Jung", "B", "2023-12-31", "jung@example.com", "010-5555-6666"},
}

type fakeSource struct {
	rows  [][]string
	err   error
	calls int
}

func (f *fakeSource) Name() string {
	return "fake"
}

func (f *fakeSource) Fetch(ctx context.Context) ([][]string, error) {
	f.calls++
	if f.err != nil {
		return nil, &sheets.FetchError{Source: "fake", Err: f.err}
	}
	return f.rows, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	return &config.Config{
		SheetURL:     sheetURL,
		OutputPrefix: "filled_sheet",
		Layout:       models.DefaultLayout(),
		Location:     seoul,
	}
}

func newTestService(t *testing.T, cfg *config.Config, src *fakeSource, c *cache.Cache, opts ...Option) *Service {
	t.Helper()

	// 2023-12-31 20:00 UTC is already 2024-01-01 in Seoul
	clock := func() time.Time { return time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC) }

	opts = append([]Option{
		WithClock(clock),
		WithSourceFactory(func(ctx context.Context, url string) (sheets.Source, error) {
			if url != sheetURL {
				return nil, fmt.Errorf("unexpected url %s", url)
			}
			return src, nil
		}),
	}, opts...)

	return NewService(cfg, logger.Nop(), c, opts...)
}

func TestConvert(t *testing.T) {
	src := &fakeSource{rows: signups}
	svc := newTestService(t, testConfig(t), src, cache.New(0))

	artifact, err := svc.Convert(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "filled_sheet_20240101.xlsx", artifact.Name)
	assert.Equal(t, xlsx.ContentType, artifact.ContentType)
	assert.Equal(t, 2, artifact.Rows)
	assert.Empty(t, artifact.Path)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)

	expected := [][]string{
		{"ID", "Name", "Class", "Date", "Email", "Phone"},
		{"2024010101", "Lee", "B", "2024-01-01", "lee@example.com", "010-1234-5678"},
		{"2024010102", "Choi", "C", "2024-01-01", "choi@example.com", "010-9876-5432"},
	}
	assert.Equal(t, expected, rows)
}

func TestConvertWithStorage(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewArtifactStorage(dir)
	require.NoError(t, err)

	svc := newTestService(t, testConfig(t), &fakeSource{rows: signups}, cache.New(0), WithStorage(st))

	artifact, err := svc.Convert(context.Background(), sheetURL)
	require.NoError(t, err)
	require.NotEmpty(t, artifact.Path)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Data, data)

	runs, err := st.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Rows)
	assert.Equal(t, sheetURL, runs[0].Source)
}

func blockArtifactPath(t *testing.T) *storage.ArtifactStorage {
	t.Helper()

	dir := t.TempDir()
	st, err := storage.NewArtifactStorage(dir)
	require.NoError(t, err)

	// a directory where the workbook should go makes the rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "filled_sheet_20240101.xlsx"), 0755))

	return st
}

func TestConvertWithFailedSave(t *testing.T) {
	st := blockArtifactPath(t)
	svc := newTestService(t, testConfig(t), &fakeSource{rows: signups}, cache.New(0), WithStorage(st))

	artifact, err := svc.Convert(context.Background(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, artifact.Data)
	assert.Empty(t, artifact.Path)
}

func TestConvertWithFailedRequiredSave(t *testing.T) {
	st := blockArtifactPath(t)
	svc := newTestService(t, testConfig(t), &fakeSource{rows: signups}, cache.New(0), WithRequiredStorage(st))

	artifact, err := svc.Convert(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, artifact)
	assert.Contains(t, err.Error(), "failed to save filled_sheet_20240101.xlsx")

	runs, err := st.Runs(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestConvertWithSheetName(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputSheetName = "Sign-ups"
	svc := newTestService(t, cfg, &fakeSource{rows: signups}, cache.New(0))

	artifact, err := svc.Convert(context.Background(), "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sign-ups"}, f.GetSheetList())
}

func TestConvertWithNoRows(t *testing.T) {
	rows := [][]string{
		{"Sign-ups"},
		{"ID", "Name"},
		{"2023123101", "Kim"},
	}
	svc := newTestService(t, testConfig(t), &fakeSource{rows: rows}, cache.New(0))

	_, err := svc.Convert(context.Background(), "")

	assert.ErrorIs(t, err, pipeline.ErrNoRows)
	assert.Contains(t, Describe(err), "No rows to process")
}

func TestConvertWithFetchFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	svc := newTestService(t, testConfig(t), src, cache.New(0))

	artifact, err := svc.Convert(context.Background(), "")

	assert.Nil(t, artifact)
	var fetchErr *sheets.FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "Failed to load the sheet: connection refused", Describe(err))
}

func TestConvertWithInvalidURL(t *testing.T) {
	svc := newTestService(t, testConfig(t), &fakeSource{rows: signups}, cache.New(0))

	_, err := svc.Convert(context.Background(), "https://example.com/other.csv")

	var fetchErr *sheets.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestConvertWithoutSheet(t *testing.T) {
	cfg := testConfig(t)
	cfg.SheetURL = ""
	svc := newTestService(t, cfg, &fakeSource{rows: signups}, cache.New(0))

	_, err := svc.Convert(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSheet)
}

func TestConvertWithEmptySheet(t *testing.T) {
	svc := newTestService(t, testConfig(t), &fakeSource{rows: [][]string{{"title only"}}}, cache.New(0))

	_, err := svc.Convert(context.Background(), "")

	assert.ErrorIs(t, err, models.ErrEmptySheet)
	assert.Contains(t, Describe(err), "empty")
}

func TestConvertUsesCache(t *testing.T) {
	src := &fakeSource{rows: signups}
	c := cache.New(time.Minute)
	svc := newTestService(t, testConfig(t), src, c)

	_, err := svc.Convert(context.Background(), "")
	require.NoError(t, err)

	n, err := svc.Pending(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, src.calls)

	c.Flush()

	_, err = svc.Pending(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestConvertWithoutCacheRefetches(t *testing.T) {
	src := &fakeSource{rows: signups}
	svc := newTestService(t, testConfig(t), src, cache.New(0))

	for i := 0; i < 3; i++ {
		_, err := svc.Pending(context.Background(), "")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, src.calls)
}

func TestPreview(t *testing.T) {
	svc := newTestService(t, testConfig(t), &fakeSource{rows: signups}, cache.New(0))

	result, err := svc.Preview(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 4, result.Records[0].Row)
	assert.Equal(t, "2024010101", result.Records[0].ID)
	assert.Equal(t, 6, result.Records[1].Row)
}

func TestFileNameWithPrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputPrefix = "processed"
	svc := NewService(cfg, logger.Nop(), nil)

	assert.Equal(t, "processed_20240315.xlsx", svc.FileName(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Contains(t, Describe(&sheets.FetchError{Source: "x", Err: sheets.ErrNotShared}), "not shared")
	assert.Contains(t, Describe(&sheets.FetchError{Source: "x", Err: sheets.ErrNoData}), "empty")
	assert.Contains(t, Describe(ErrNoSheet), "SHEET_URL")
	assert.Equal(t, "Conversion failed: boom", Describe(errors.New("boom")))
}
