package service

import (
	"context"
	"sync"

	"sidenote-sync-server/internal/domain"
)

type mockSettingsRepository struct {
	mu       sync.Mutex
	settings domain.SyncSettings
	getErr   error
	saveErr  error
	saves    int
}

func (m *mockSettingsRepository) Get(ctx context.Context) (*domain.SyncSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	settings := m.settings
	return &settings, nil
}

func (m *mockSettingsRepository) Save(ctx context.Context, settings *domain.SyncSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = *settings
	m.saves++
	return nil
}

type mockSnapshotRepository struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	getErr   error
	replaces int
}

func (m *mockSnapshotRepository) Get(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	snapshot := m.snapshot
	return &snapshot, nil
}

func (m *mockSnapshotRepository) Replace(ctx context.Context, snapshot *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = *snapshot
	m.replaces++
	return nil
}

type mockNotifier struct {
	triggers int
}

func (m *mockNotifier) Trigger() {
	m.triggers++
}

type mockPublisher struct {
	mu       sync.Mutex
	statuses []domain.SyncStatus
}

func (m *mockPublisher) PublishStatus(status domain.SyncStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func (m *mockPublisher) published() []domain.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SyncStatus, len(m.statuses))
	copy(out, m.statuses)
	return out
}

type mockRunHistory struct {
	mu   sync.Mutex
	runs []domain.SyncRun
}

func (m *mockRunHistory) Record(ctx context.Context, run *domain.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append([]domain.SyncRun{*run}, m.runs...)
	return nil
}

func (m *mockRunHistory) Recent(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && limit < len(m.runs) {
		return append([]domain.SyncRun(nil), m.runs[:limit]...), nil
	}
	return append([]domain.SyncRun(nil), m.runs...), nil
}
