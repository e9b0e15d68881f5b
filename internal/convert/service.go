// Package convert runs a sheet through the pipeline and packages the result
// as a downloadable workbook.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pmurley/sheetfill/internal/cache"
	"github.com/pmurley/sheetfill/internal/config"
	"github.com/pmurley/sheetfill/internal/models"
	"github.com/pmurley/sheetfill/internal/pipeline"
	"github.com/pmurley/sheetfill/internal/sheets"
	"github.com/pmurley/sheetfill/internal/storage"
	"github.com/pmurley/sheetfill/internal/xlsx"
	"github.com/pmurley/sheetfill/pkg/logger"
)

// ErrNoSheet is returned when neither the request nor the configuration names a sheet
var ErrNoSheet = errors.New("no sheet URL given and SHEET_URL is not set")

// Artifact is a generated workbook ready to be attached or saved
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
	Date        time.Time
	Path        string // set when the artifact was also saved locally
}

// SourceFactory builds the source for a sheet URL
type SourceFactory func(ctx context.Context, sheetURL string) (sheets.Source, error)

type Service struct {
	config   *config.Config
	logger   *logger.Logger
	cache    *cache.Cache
	storage  *storage.ArtifactStorage
	mustSave bool
	sources  SourceFactory
	clock    func() time.Time
}

// Option customises a Service
type Option func(*Service)

func WithSourceFactory(f SourceFactory) Option {
	return func(s *Service) { s.sources = f }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithStorage saves every artifact to st. A failed save is logged and the
// artifact is still returned.
func WithStorage(st *storage.ArtifactStorage) Option {
	return func(s *Service) {
		s.storage = st
		s.mustSave = false
	}
}

// WithRequiredStorage saves every artifact to st and fails the conversion
// when the save fails.
func WithRequiredStorage(st *storage.ArtifactStorage) Option {
	return func(s *Service) {
		s.storage = st
		s.mustSave = true
	}
}

func NewService(cfg *config.Config, log *logger.Logger, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		config: cfg,
		logger: log,
		cache:  c,
		clock:  time.Now,
	}

	s.sources = func(ctx context.Context, sheetURL string) (sheets.Source, error) {
		return sheets.NewSource(ctx, sheetURL, sheets.Options{
			APIKey:          cfg.GoogleAPIKey,
			CredentialsFile: cfg.CredentialsFile,
			Range:           cfg.SheetRange,
		})
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Convert fetches the sheet, keys the rows that have no identifier yet and
// renders them as a workbook. An empty sheetURL falls back to SHEET_URL.
func (s *Service) Convert(ctx context.Context, sheetURL string) (*Artifact, error) {
	result, source, err := s.run(ctx, sheetURL)
	if err != nil {
		return nil, err
	}

	data, err := xlsx.Bytes(result.Rows(), xlsx.Options{SheetName: s.config.OutputSheetName})
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	artifact := &Artifact{
		Name:        s.FileName(result.Date),
		ContentType: xlsx.ContentType,
		Data:        data,
		Rows:        len(result.Records),
		Date:        result.Date,
	}

	if s.storage != nil {
		path, err := s.storage.Save(artifact.Name, data, storage.Run{
			Time:   s.clock(),
			Rows:   artifact.Rows,
			Source: source,
		})
		if err != nil {
			if s.mustSave {
				return nil, fmt.Errorf("failed to save %s: %w", artifact.Name, err)
			}
			// the artifact is still delivered
			s.logger.Warn("Failed to save artifact locally:", err)
		}
		artifact.Path = path
	}

	s.logger.Info("Converted", artifact.Rows, "rows from", source, "into", artifact.Name)

	return artifact, nil
}

// Preview runs the pipeline without rendering a workbook
func (s *Service) Preview(ctx context.Context, sheetURL string) (*pipeline.Result, error) {
	result, _, err := s.run(ctx, sheetURL)
	return result, err
}

// Pending counts the rows waiting for an identifier
func (s *Service) Pending(ctx context.Context, sheetURL string) (int, error) {
	table, _, err := s.table(ctx, sheetURL)
	if err != nil {
		return 0, err
	}
	return pipeline.Pending(table), nil
}

// FileName is <prefix>_<YYYYMMDD>.xlsx
func (s *Service) FileName(date time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", s.config.OutputPrefix, date.Format(pipeline.DateLayout))
}

// Today is the run date in the configured time zone
func (s *Service) Today() time.Time {
	now := s.clock()
	if s.config.Location != nil {
		now = now.In(s.config.Location)
	}
	return now
}

func (s *Service) run(ctx context.Context, sheetURL string) (*pipeline.Result, string, error) {
	table, source, err := s.table(ctx, sheetURL)
	if err != nil {
		return nil, source, err
	}

	result, err := pipeline.Run(table, s.Today())
	if err != nil {
		return nil, source, err
	}

	return result, source, nil
}

func (s *Service) table(ctx context.Context, sheetURL string) (*models.Table, string, error) {
	if sheetURL == "" {
		sheetURL = s.config.SheetURL
	}
	if sheetURL == "" {
		return nil, "", ErrNoSheet
	}

	rows, err := s.fetch(ctx, sheetURL)
	if err != nil {
		return nil, sheetURL, err
	}

	table, err := models.NewTable(rows, s.config.Layout)
	if err != nil {
		return nil, sheetURL, err
	}

	return table, sheetURL, nil
}

func (s *Service) fetch(ctx context.Context, sheetURL string) ([][]string, error) {
	if rows, found := s.cache.GetTable(sheetURL); found {
		s.logger.Debug("Using cached snapshot of", sheetURL)
		return rows, nil
	}

	source, err := s.sources(ctx, sheetURL)
	if err != nil {
		return nil, &sheets.FetchError{Source: sheetURL, Err: err}
	}

	s.logger.Debug("Fetching", source.Name())

	rows, err := source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetTable(sheetURL, rows)

	return rows, nil
}
