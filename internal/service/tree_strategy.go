package service

import (
	"context"
	"fmt"
	"time"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/github"
	"sidenote-sync-server/pkg/notepath"

	"github.com/rs/zerolog"
)

const (
	treeSyncMessage = "Markdown files synced successfully"

	PlaceholderPath    = "README.md"
	placeholderContent = "# Sidebar Notes\n\nNo notes have been synced yet.\n"
)

// TreeCommitStrategy publishes every note as its own file in a single commit:
// tree, then commit, then a fast-forward of the branch. Until the final ref
// update nothing is visible on the branch, so an interrupted run leaves only
// unreachable objects behind.
type TreeCommitStrategy struct {
	log zerolog.Logger
	now func() time.Time
}

func NewTreeCommitStrategy(log zerolog.Logger) *TreeCommitStrategy {
	return &TreeCommitStrategy{
		log: log.With().Str("strategy", string(domain.SyncModePerNoteFiles)).Logger(),
		now: time.Now,
	}
}

func (s *TreeCommitStrategy) Sync(ctx context.Context, remote RemoteAPI, cfg *domain.SyncConfiguration, notes []domain.Note, folders []domain.Folder) (domain.SyncResult, error) {
	log := s.log.With().Str("repo", cfg.Repository).Str("branch", cfg.Branch).Logger()

	var headSHA, baseTree string
	initial := false

	ref, err := remote.GetRef(ctx, cfg.Repository, cfg.Branch)
	switch {
	case err == nil:
		headSHA = ref.Object.SHA
	case github.IsMissing(err):
		initial = true
		log.Info().Msg("branch has no commits yet, creating initial commit")
	default:
		return domain.SyncResult{}, fmt.Errorf("failed to resolve branch %s: %w", cfg.Branch, err)
	}

	if !initial {
		head, err := remote.GetCommit(ctx, cfg.Repository, headSHA)
		if err != nil {
			return domain.SyncResult{}, fmt.Errorf("failed to read head commit %s: %w", headSHA, err)
		}
		baseTree = head.Tree.SHA
	}

	entries := BuildTreeEntries(notes, folders, log)

	tree, err := remote.CreateTree(ctx, cfg.Repository, &github.CreateTreeRequest{
		Tree:     entries,
		BaseTree: baseTree,
	})
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("failed to create tree: %w", err)
	}

	commitReq := &github.CreateCommitRequest{
		Message: fmt.Sprintf("Sync %d notes (%s)", len(notes), s.now().UTC().Format(time.RFC3339)),
		Tree:    tree.SHA,
	}
	if !initial {
		commitReq.Parents = []string{headSHA}
	}

	commit, err := remote.CreateCommit(ctx, cfg.Repository, commitReq)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("failed to create commit: %w", err)
	}

	if initial {
		if _, err := remote.CreateRef(ctx, cfg.Repository, cfg.Branch, commit.SHA); err != nil {
			return domain.SyncResult{}, fmt.Errorf("failed to create branch %s: %w", cfg.Branch, err)
		}
	} else {
		if _, err := remote.UpdateRef(ctx, cfg.Repository, cfg.Branch, commit.SHA, false); err != nil {
			return domain.SyncResult{}, fmt.Errorf("failed to fast-forward branch %s (it may have changed remotely, sync again): %w", cfg.Branch, err)
		}
	}

	log.Info().Str("commit", commit.SHA).Int("files", len(entries)).Bool("initial", initial).Msg("notes committed")
	return domain.SyncSucceeded(treeSyncMessage), nil
}

// BuildTreeEntries maps each note to a blob entry at its sanitized path.
// Notes whose folder is unknown land at the root. When two notes resolve to
// the same path the later one wins. An empty collection yields a single
// README placeholder so the commit is never empty.
func BuildTreeEntries(notes []domain.Note, folders []domain.Folder, log zerolog.Logger) []github.TreeEntry {
	if len(notes) == 0 {
		return []github.TreeEntry{{
			Path:    PlaceholderPath,
			Mode:    github.FileMode,
			Type:    github.TypeBlob,
			Content: placeholderContent,
		}}
	}

	folderNames := domain.FolderNames(folders)
	entries := make([]github.TreeEntry, 0, len(notes))
	index := make(map[string]int, len(notes))

	for _, note := range notes {
		folder := ""
		if note.FolderID != nil {
			folder = folderNames[*note.FolderID]
		}

		entry := github.TreeEntry{
			Path:    notepath.FilePath(note.ID, note.Name, folder),
			Mode:    github.FileMode,
			Type:    github.TypeBlob,
			Content: note.Content,
		}

		if i, ok := index[entry.Path]; ok {
			log.Debug().Str("path", entry.Path).Str("note", note.ID).Msg("path collision, later note overwrites earlier one")
			entries[i] = entry
			continue
		}
		index[entry.Path] = len(entries)
		entries = append(entries, entry)
	}

	return entries
}
