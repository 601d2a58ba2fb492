package service

import (
	"context"
	"fmt"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/repository"
)

// ChangeNotifier is told about every local edit. The auto-syncer debounces these.
type ChangeNotifier interface {
	Trigger()
}

type SnapshotService struct {
	repo     repository.SnapshotRepository
	notifier ChangeNotifier
}

func NewSnapshotService(repo repository.SnapshotRepository, notifier ChangeNotifier) *SnapshotService {
	return &SnapshotService{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *SnapshotService) Get(ctx context.Context) (*domain.Snapshot, error) {
	return s.repo.Get(ctx)
}

// Replace overwrites the stored collection with the sidebar's current state.
func (s *SnapshotService) Replace(ctx context.Context, req *domain.PutSnapshotRequest) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{
		Notes:   req.Notes,
		Folders: req.Folders,
	}
	if snapshot.Notes == nil {
		snapshot.Notes = []domain.Note{}
	}
	if snapshot.Folders == nil {
		snapshot.Folders = []domain.Folder{}
	}

	if err := s.repo.Replace(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Trigger()
	}
	return snapshot, nil
}
