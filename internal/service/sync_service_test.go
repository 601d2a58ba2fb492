package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/github"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncService(settings domain.SyncSettings, factory RemoteFactory) *SyncService {
	return NewSyncService(NewConfigResolver(&mockSettingsRepository{settings: settings}), factory, zerolog.Nop())
}

func TestSyncToRemoteMissingConfiguration(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := newTestSyncService(domain.SyncSettings{Repository: "octo/notes"}, gh.factory())

	result := svc.SyncToRemote(context.Background(), nil, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "token is missing")
	assert.Empty(t, gh.calls())
}

func TestSyncToRemoteInvalidRepository(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := newTestSyncService(domain.SyncSettings{Token: "t", Repository: "https://github.com/octo/notes"}, gh.factory())

	result := svc.SyncToRemote(context.Background(), nil, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "owner/name")
	assert.Empty(t, gh.calls())
}

func TestSyncToRemoteReportsPermissionHint(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, contentsPath, http.StatusForbidden, `{"message":"Resource not accessible by personal access token"}`)
	gh.on(http.MethodPut, contentsPath, http.StatusCreated, `{}`)
	svc := newTestSyncService(domain.SyncSettings{Token: "t", Repository: "octo/notes"}, gh.factory())

	notes, folders := sampleCollection()
	result := svc.SyncToRemote(context.Background(), notes, folders)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, `"repo" scope`)
	assert.Equal(t, []string{"GET " + contentsPath}, gh.calls())
}

func TestSyncToRemoteSelectsStrategyByMode(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.on(http.MethodGet, contentsPath, http.StatusNotFound, `{"message":"Not Found"}`)
		gh.on(http.MethodPut, contentsPath, http.StatusCreated, `{}`)
		svc := newTestSyncService(domain.SyncSettings{Token: "t", Repository: "octo/notes"}, gh.factory())

		notes, folders := sampleCollection()
		result := svc.SyncToRemote(context.Background(), notes, folders)

		assert.Equal(t, domain.SyncSucceeded("JSON backup synced successfully"), result)
	})

	t.Run("per note files", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.on(http.MethodGet, refPath, http.StatusConflict, `{"message":"Git Repository is empty."}`)
		gh.on(http.MethodPost, treesPath, http.StatusCreated, `{"sha":"tree1"}`)
		gh.on(http.MethodPost, commitsPath, http.StatusCreated, `{"sha":"commit1"}`)
		gh.on(http.MethodPost, refsPath, http.StatusCreated, `{}`)
		svc := newTestSyncService(domain.SyncSettings{Token: "t", Repository: "octo/notes", Mode: domain.SyncModePerNoteFiles}, gh.factory())

		notes, folders := sampleCollection()
		result := svc.SyncToRemote(context.Background(), notes, folders)

		assert.Equal(t, domain.SyncSucceeded("Markdown files synced successfully"), result)
		_, ok := gh.find(http.MethodPost, refsPath)
		assert.True(t, ok)
	})
}

func TestSyncToRemotePermissionDenied(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, contentsPath, http.StatusNotFound, `{"message":"Not Found"}`)
	gh.on(http.MethodPut, contentsPath, http.StatusForbidden, `{"message":"Resource not accessible by integration"}`)
	svc := newTestSyncService(domain.SyncSettings{Token: "t", Repository: "octo/notes"}, gh.factory())

	result := svc.SyncToRemote(context.Background(), nil, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, `"repo" scope`)
}

func TestSyncToRemoteNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := newTestSyncService(
		domain.SyncSettings{Token: "t", Repository: "octo/notes", Mode: domain.SyncModePerNoteFiles},
		GitHubRemoteFactory(github.WithBaseURL(url)),
	)

	result := svc.SyncToRemote(context.Background(), nil, nil)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "network unavailable")
}

type panickingStrategy struct{}

func (panickingStrategy) Sync(ctx context.Context, remote RemoteAPI, cfg *domain.SyncConfiguration, notes []domain.Note, folders []domain.Folder) (domain.SyncResult, error) {
	panic("boom")
}

func TestSyncToRemoteRecoversPanic(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := newTestSyncService(domain.SyncSettings{Token: "t", Repository: "octo/notes"}, gh.factory())
	svc.strategies[domain.SyncModeSingleFile] = panickingStrategy{}

	result := svc.SyncToRemote(context.Background(), nil, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "boom")
}
