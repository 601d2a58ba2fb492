package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd builds a fresh command tree. Every call returns independent flag state.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:     "notesync",
		Version: version,
		Short:   "Push sidebar notes to a GitHub repository",
		Long: `notesync pushes an exported sidebar notes file to GitHub without running
the sync server. It uses the same layouts as the server: one JSON backup
file, or one Markdown file per note committed in a single commit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newPushCmd(opts))
	root.AddCommand(newCheckCmd(opts))

	return root
}

type globalOptions struct {
	jsonOutput bool
	logLevel   string
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// Execute runs the CLI against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
