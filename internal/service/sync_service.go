package service

import (
	"context"
	"fmt"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/pkg/hash"

	"github.com/rs/zerolog"
)

// SyncStrategy pushes a full snapshot to the remote in one particular layout.
type SyncStrategy interface {
	Sync(ctx context.Context, remote RemoteAPI, cfg *domain.SyncConfiguration, notes []domain.Note, folders []domain.Folder) (domain.SyncResult, error)
}

// Syncer is anything that can run one complete sync and report its outcome.
type Syncer interface {
	SyncToRemote(ctx context.Context, notes []domain.Note, folders []domain.Folder) domain.SyncResult
}

type SyncService struct {
	resolver   *ConfigResolver
	newRemote  RemoteFactory
	strategies map[domain.SyncMode]SyncStrategy
	log        zerolog.Logger
}

func NewSyncService(resolver *ConfigResolver, newRemote RemoteFactory, log zerolog.Logger) *SyncService {
	return &SyncService{
		resolver:  resolver,
		newRemote: newRemote,
		strategies: map[domain.SyncMode]SyncStrategy{
			domain.SyncModeSingleFile:   NewBlobBackupStrategy(log),
			domain.SyncModePerNoteFiles: NewTreeCommitStrategy(log),
		},
		log: log,
	}
}

// SyncToRemote resolves the configuration, runs the strategy for its mode and
// folds every failure into the returned result.
func (s *SyncService) SyncToRemote(ctx context.Context, notes []domain.Note, folders []domain.Folder) (result domain.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("sync aborted")
			result = domain.SyncFailed(fmt.Errorf("sync aborted: %v", r))
		}
	}()

	result, err := s.run(ctx, notes, folders)
	if err != nil {
		s.log.Error().Err(err).Msg("sync failed")
		return domain.SyncFailed(err)
	}
	return result
}

func (s *SyncService) run(ctx context.Context, notes []domain.Note, folders []domain.Folder) (domain.SyncResult, error) {
	cfg, err := s.resolver.Resolve(ctx)
	if err != nil {
		return domain.SyncResult{}, err
	}

	strategy, ok := s.strategies[cfg.Mode]
	if !ok {
		return domain.SyncResult{}, &ConfigError{Kind: ConfigurationInvalid, Field: "mode", Reason: fmt.Sprintf("%q has no strategy", cfg.Mode)}
	}

	s.log.Info().
		Str("repo", cfg.Repository).
		Str("branch", cfg.Branch).
		Str("mode", string(cfg.Mode)).
		Str("token", hash.Fingerprint(cfg.Token)).
		Int("notes", len(notes)).
		Int("folders", len(folders)).
		Msg("sync started")

	return strategy.Sync(ctx, s.newRemote(ctx, cfg.Token), cfg, notes, folders)
}
