package service

import (
	"context"
	"testing"

	"sidenote-sync-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotService_Replace(t *testing.T) {
	repo := &mockSnapshotRepository{}
	notifier := &mockNotifier{}
	svc := NewSnapshotService(repo, notifier)

	notes, folders := sampleCollection()
	snapshot, err := svc.Replace(context.Background(), &domain.PutSnapshotRequest{Notes: notes, Folders: folders})
	require.NoError(t, err)

	assert.Len(t, snapshot.Notes, 2)
	assert.Equal(t, 1, repo.replaces)
	assert.Equal(t, 1, notifier.triggers)

	stored, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notes, stored.Notes)
	assert.Equal(t, folders, stored.Folders)
}

func TestSnapshotService_ReplaceWithEmptyCollection(t *testing.T) {
	repo := &mockSnapshotRepository{}
	svc := NewSnapshotService(repo, nil)

	snapshot, err := svc.Replace(context.Background(), &domain.PutSnapshotRequest{})
	require.NoError(t, err)

	assert.NotNil(t, snapshot.Notes)
	assert.NotNil(t, snapshot.Folders)
	assert.Empty(t, snapshot.Notes)
}
