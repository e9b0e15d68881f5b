// Command sheetfill keys the new rows of a sign-up sheet and writes them to
// an xlsx file without going through Discord.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	url     string
	envFile string
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sheetfill",
		Short: "Key new sign-up rows and export them as xlsx",
		Long: `sheetfill reads a published sheet, picks the rows whose ID cell is
empty, gives them a YYYYMMDDNN identifier, normalizes their phone numbers
and writes the result to a bordered xlsx file.

The sheet comes from --url or SHEET_URL. Every other setting is read from
the environment or the file named by --env.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.url, "url", "", "Sheet URL (default: SHEET_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env", "", "Load environment from this file (default: .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newPreviewCommand(opts))

	return rootCmd
}
