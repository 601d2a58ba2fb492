package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/github"
	"sidenote-sync-server/internal/service"
	"sidenote-sync-server/pkg/logger"

	"github.com/spf13/cobra"
)

const tokenEnv = "GITHUB_TOKEN"

type pushOptions struct {
	file    string
	repo    string
	branch  string
	mode    string
	apiURL  string
	timeout time.Duration
}

func newPushCmd(global *globalOptions) *cobra.Command {
	opts := &pushOptions{}

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Sync an exported notes file to GitHub",
		Long: `Push reads a notes export (the sidebar-notes-data.json format) and syncs it
to the repository in one run. The token is read from $GITHUB_TOKEN.

Examples:
  # Single JSON backup on main
  notesync push --file export.json --repo octo/notes

  # One Markdown file per note on a separate branch
  notesync push --file export.json --repo octo/notes --branch notes --mode per-note-files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Notes export to push (required)")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Target repository as owner/name (required)")
	cmd.Flags().StringVar(&opts.branch, "branch", domain.DefaultBranch, "Target branch")
	cmd.Flags().StringVar(&opts.mode, "mode", string(domain.SyncModeSingleFile), "Layout: single-file or per-note-files")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", github.DefaultBaseURL, "GitHub API base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Abort the sync after this long")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func runPush(cmd *cobra.Command, global *globalOptions, opts *pushOptions) error {
	snapshot, err := readExport(opts.file)
	if err != nil {
		return err
	}

	settings := staticSettings{
		Token:      os.Getenv(tokenEnv),
		Repository: opts.repo,
		Branch:     opts.branch,
		Mode:       domain.SyncMode(opts.mode),
	}

	// validate before touching the network so flag mistakes fail fast
	if _, err := service.ResolveSettings((*domain.SyncSettings)(&settings)); err != nil {
		var cfgErr *service.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Kind == service.ConfigurationMissing && cfgErr.Field == "token" {
			return fmt.Errorf("%w (set $%s)", err, tokenEnv)
		}
		return err
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), global.logLevel, "development")
	syncService := service.NewSyncService(
		service.NewConfigResolver(settings),
		service.GitHubRemoteFactory(github.WithBaseURL(opts.apiURL)),
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	result := syncService.SyncToRemote(ctx, snapshot.Notes, snapshot.Folders)

	out := cmd.OutOrStdout()
	if global.jsonOutput {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else if result.Success {
		printSuccess(out, "%s (%d notes, %d folders -> %s@%s)\n", result.Message, len(snapshot.Notes), len(snapshot.Folders), opts.repo, opts.branch)
	}

	if !result.Success {
		return errors.New(result.Error)
	}
	return nil
}

func readExport(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	var doc domain.BackupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export %s: %w", path, err)
	}
	if doc.Version != "" && doc.Version != domain.BackupVersion {
		return nil, fmt.Errorf("unsupported export version %q", doc.Version)
	}

	return doc.Snapshot(), nil
}
