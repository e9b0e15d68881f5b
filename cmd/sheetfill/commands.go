package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pmurley/sheetfill/internal/cache"
	"github.com/pmurley/sheetfill/internal/config"
	"github.com/pmurley/sheetfill/internal/convert"
	"github.com/pmurley/sheetfill/internal/storage"
	"github.com/pmurley/sheetfill/pkg/logger"
)

func newConvertCommand(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Write the keyed rows to <prefix>_<YYYYMMDD>.xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			defer log.Sync()

			if outDir == "" {
				outDir = cfg.OutputDir
			}
			if outDir == "" || outDir == "-" {
				outDir = storage.DefaultDataDir
			}

			artifacts, err := storage.NewArtifactStorage(outDir)
			if err != nil {
				return err
			}

			service := convert.NewService(cfg, log, cache.New(0), convert.WithRequiredStorage(artifacts))

			artifact, err := service.Convert(cmd.Context(), opts.url)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Keyed %d rows into %s\n", artifact.Rows, artifact.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: OUTPUT_DIR or ./data)")

	return cmd
}

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "List the rows that would be keyed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			defer log.Sync()

			service := convert.NewService(cfg, log, cache.New(0))

			result, err := service.Preview(cmd.Context(), opts.url)
			if err != nil {
				return describe(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ROW\tID\tPHONE")
			for _, rec := range result.Records {
				fmt.Fprintf(w, "%d\t%s\t%s\n", rec.Row, rec.ID, rec.Phone)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d rows would be keyed as of %s\n", len(result.Records), service.FileName(result.Date))
			return nil
		},
	}
}

// setup loads the environment, configuration and logger shared by every command
func setup(opts *rootOptions) (*config.Config, *logger.Logger, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", opts.envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}

	return cfg, logger.New(level), nil
}

// describe keeps the underlying error for errors.Is while printing the
// message a user can act on.
func describe(err error) error {
	return &userError{msg: convert.Describe(err), err: err}
}

type userError struct {
	msg string
	err error
}

func (e *userError) Error() string {
	return e.msg
}

func (e *userError) Unwrap() error {
	return e.err
}

