package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/github"

	"github.com/rs/zerolog"
)

const blobSyncMessage = "JSON backup synced successfully"

// BlobBackupStrategy writes the whole collection as one JSON file through the
// contents API. The file's current blob sha, when known, is sent back so that
// GitHub rejects the write if someone else changed the file in between.
type BlobBackupStrategy struct {
	log zerolog.Logger
	now func() time.Time
}

func NewBlobBackupStrategy(log zerolog.Logger) *BlobBackupStrategy {
	return &BlobBackupStrategy{
		log: log.With().Str("strategy", string(domain.SyncModeSingleFile)).Logger(),
		now: time.Now,
	}
}

func (s *BlobBackupStrategy) Sync(ctx context.Context, remote RemoteAPI, cfg *domain.SyncConfiguration, notes []domain.Note, folders []domain.Folder) (domain.SyncResult, error) {
	payload, err := EncodeBackup(domain.NewBackupDocument(notes, folders, s.now()))
	if err != nil {
		return domain.SyncResult{}, err
	}

	var sha string
	existing, err := remote.GetContents(ctx, cfg.Repository, domain.BackupFilePath, cfg.Branch)
	switch {
	case err == nil:
		sha = existing.SHA
	case github.IsMissing(err):
		s.log.Debug().Str("repo", cfg.Repository).Str("branch", cfg.Branch).Msg("backup file does not exist yet, creating it")
	case github.IsPermissionDenied(err):
		return domain.SyncResult{}, err
	default:
		s.log.Warn().Err(err).Str("repo", cfg.Repository).Msg("could not read current backup file, writing without sha")
	}

	req := &github.PutContentsRequest{
		Message: fmt.Sprintf("Backup %d notes and %d folders", len(notes), len(folders)),
		Content: base64.StdEncoding.EncodeToString(payload),
		Branch:  cfg.Branch,
		SHA:     sha,
	}
	if _, err := remote.PutContents(ctx, cfg.Repository, domain.BackupFilePath, req); err != nil {
		return domain.SyncResult{}, fmt.Errorf("failed to write %s: %w", domain.BackupFilePath, err)
	}

	s.log.Info().Str("repo", cfg.Repository).Str("branch", cfg.Branch).Int("notes", len(notes)).Bool("created", sha == "").Msg("backup written")
	return domain.SyncSucceeded(blobSyncMessage), nil
}

// EncodeBackup renders the backup as two-space indented JSON. HTML in note
// content is kept literal rather than \u-escaped.
func EncodeBackup(doc *domain.BackupDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
