package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/lherron/catimerge/internal/cli/appctx"
	"github.com/lherron/catimerge/internal/merge"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catimerge [flags] FIRST_ZIP SECOND_ZIP OUTPUT_ZIP",
	Short: "Merge two Catima export zips",
	Long: `catimerge merges two Catima export zips into a new one.

Groups are combined and de-duplicated by name. Cards and images from the
second export are renumbered to follow the highest card ID of the first,
so nothing from either export is lost. The output file is only written
once both exports have been read and merged.

Inputs are checked strictly. The line after the catima.csv version must be
blank. A renamed image from the second export that would replace an image
already in the first is an error rather than an overwrite.`,
	Version:       Version,
	Args:          cobra.ExactArgs(3),
	RunE:          appctx.WithApp(appctx.DefaultOptions(), runMerge),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. An interrupt cancels a merge in progress.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides CATIMERGE_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: human or json (overrides CATIMERGE_LOG_FORMAT)")

	rootCmd.Flags().BoolP("verbose", "v", false, "Print progress while merging")
	rootCmd.Flags().Int("compression-level", -1, "Deflate level for the output, -2 to 9 (overrides CATIMERGE_COMPRESSION_LEVEL)")
}

func runMerge(app *appctx.App, cmd *cobra.Command, args []string) error {
	first, second, output := args[0], args[1], args[2]

	var progress merge.Progress = merge.NopProgress{}
	if app.Config.Verbose {
		progress = newTextProgress(cmd.OutOrStdout())
	}

	return merge.MergeExports(cmd.Context(), first, second, output, merge.Options{
		Progress:         progress,
		CompressionLevel: app.Config.CompressionLevel,
	})
}
