package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/github"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	refPath     = "/repos/octo/notes/git/ref/heads/main"
	refsPath    = "/repos/octo/notes/git/refs"
	refMainPath = "/repos/octo/notes/git/refs/heads/main"
	treesPath   = "/repos/octo/notes/git/trees"
	commitsPath = "/repos/octo/notes/git/commits"
)

func newTreeStrategy() *TreeCommitStrategy {
	s := NewTreeCommitStrategy(zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC) }
	return s
}

func treePaths(t *testing.T, req recordedRequest) []string {
	t.Helper()
	entries, ok := req.Body["tree"].([]interface{})
	require.True(t, ok)

	var paths []string
	for _, e := range entries {
		entry := e.(map[string]interface{})
		assert.Equal(t, "100644", entry["mode"])
		assert.Equal(t, "blob", entry["type"])
		paths = append(paths, entry["path"].(string))
	}
	return paths
}

func TestTreeSyncInitialCommit(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "missing branch", status: http.StatusNotFound, body: `{"message":"Not Found"}`},
		{name: "empty repository", status: http.StatusConflict, body: `{"message":"Git Repository is empty."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := newFakeGitHub(t)
			gh.on(http.MethodGet, refPath, tt.status, tt.body)
			gh.on(http.MethodPost, treesPath, http.StatusCreated, `{"sha":"tree1"}`)
			gh.on(http.MethodPost, commitsPath, http.StatusCreated, `{"sha":"commit1"}`)
			gh.on(http.MethodPost, refsPath, http.StatusCreated, `{"ref":"refs/heads/main","object":{"sha":"commit1"}}`)

			notes, folders := sampleCollection()
			result, err := newTreeStrategy().Sync(context.Background(), gh.remote(), testConfig(domain.SyncModePerNoteFiles), notes, folders)
			require.NoError(t, err)

			assert.Equal(t, domain.SyncSucceeded("Markdown files synced successfully"), result)
			assert.Equal(t, []string{
				"GET " + refPath,
				"POST " + treesPath,
				"POST " + commitsPath,
				"POST " + refsPath,
			}, gh.calls())

			tree, _ := gh.find(http.MethodPost, treesPath)
			assert.NotContains(t, tree.Body, "base_tree")
			assert.Equal(t, []string{"Work Items/Standup.md", "Ideas.md"}, treePaths(t, tree))

			commit, _ := gh.find(http.MethodPost, commitsPath)
			assert.NotContains(t, commit.Body, "parents")
			assert.Equal(t, "tree1", commit.Body["tree"])
			assert.Contains(t, commit.Body["message"], "2 notes")

			ref, _ := gh.find(http.MethodPost, refsPath)
			assert.Equal(t, "refs/heads/main", ref.Body["ref"])
			assert.Equal(t, "commit1", ref.Body["sha"])
		})
	}
}

func TestTreeSyncExistingBranch(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, refPath, http.StatusOK, `{"ref":"refs/heads/main","object":{"sha":"head1","type":"commit"}}`)
	gh.on(http.MethodGet, commitsPath+"/head1", http.StatusOK, `{"sha":"head1","tree":{"sha":"base1"}}`)
	gh.on(http.MethodPost, treesPath, http.StatusCreated, `{"sha":"tree2"}`)
	gh.on(http.MethodPost, commitsPath, http.StatusCreated, `{"sha":"commit2"}`)
	gh.on(http.MethodPatch, refMainPath, http.StatusOK, `{"ref":"refs/heads/main","object":{"sha":"commit2"}}`)

	notes, folders := sampleCollection()
	result, err := newTreeStrategy().Sync(context.Background(), gh.remote(), testConfig(domain.SyncModePerNoteFiles), notes, folders)
	require.NoError(t, err)
	assert.True(t, result.Success)

	tree, _ := gh.find(http.MethodPost, treesPath)
	assert.Equal(t, "base1", tree.Body["base_tree"])

	commit, _ := gh.find(http.MethodPost, commitsPath)
	assert.Equal(t, []interface{}{"head1"}, commit.Body["parents"])

	patch, ok := gh.find(http.MethodPatch, refMainPath)
	require.True(t, ok)
	assert.Equal(t, "commit2", patch.Body["sha"])
	assert.Equal(t, false, patch.Body["force"])

	_, created := gh.find(http.MethodPost, refsPath)
	assert.False(t, created)
}

func TestTreeSyncEmptyCollectionWritesPlaceholder(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, refPath, http.StatusNotFound, `{"message":"Not Found"}`)
	gh.on(http.MethodPost, treesPath, http.StatusCreated, `{"sha":"tree1"}`)
	gh.on(http.MethodPost, commitsPath, http.StatusCreated, `{"sha":"commit1"}`)
	gh.on(http.MethodPost, refsPath, http.StatusCreated, `{}`)

	result, err := newTreeStrategy().Sync(context.Background(), gh.remote(), testConfig(domain.SyncModePerNoteFiles), nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)

	tree, _ := gh.find(http.MethodPost, treesPath)
	assert.Equal(t, []string{PlaceholderPath}, treePaths(t, tree))
}

func TestTreeSyncPermissionDeniedStops(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, refPath, http.StatusNotFound, `{"message":"Not Found"}`)
	gh.on(http.MethodPost, treesPath, http.StatusForbidden, `{"message":"Resource not accessible by personal access token"}`)

	notes, folders := sampleCollection()
	_, err := newTreeStrategy().Sync(context.Background(), gh.remote(), testConfig(domain.SyncModePerNoteFiles), notes, folders)
	require.Error(t, err)

	assert.True(t, github.IsPermissionDenied(err))
	assert.Contains(t, err.Error(), `"repo" scope`)
	assert.Equal(t, []string{"GET " + refPath, "POST " + treesPath}, gh.calls())
}

func TestTreeSyncRefLookupFailureAborts(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, refPath, http.StatusUnauthorized, `{"message":"Bad credentials"}`)

	_, err := newTreeStrategy().Sync(context.Background(), gh.remote(), testConfig(domain.SyncModePerNoteFiles), nil, nil)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "Bad credentials")
	assert.Equal(t, []string{"GET " + refPath}, gh.calls())
}

func TestTreeSyncRejectedFastForward(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.on(http.MethodGet, refPath, http.StatusOK, `{"object":{"sha":"head1"}}`)
	gh.on(http.MethodGet, commitsPath+"/head1", http.StatusOK, `{"sha":"head1","tree":{"sha":"base1"}}`)
	gh.on(http.MethodPost, treesPath, http.StatusCreated, `{"sha":"tree2"}`)
	gh.on(http.MethodPost, commitsPath, http.StatusCreated, `{"sha":"commit2"}`)
	gh.on(http.MethodPatch, refMainPath, http.StatusUnprocessableEntity, `{"message":"Update is not a fast forward"}`)

	_, err := newTreeStrategy().Sync(context.Background(), gh.remote(), testConfig(domain.SyncModePerNoteFiles), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a fast forward")
}

func TestBuildTreeEntries(t *testing.T) {
	folders := []domain.Folder{{ID: "f1", Name: "Journal"}}
	notes := []domain.Note{
		{ID: "a", Name: "Day", Content: "first", FolderID: strPtr("f1")},
		{ID: "b", Name: "???", Content: "untitled"},
		{ID: "c", Name: "Lost", Content: "orphan", FolderID: strPtr("gone")},
		{ID: "d", Name: "Day!", Content: "second", FolderID: strPtr("f1")},
	}

	entries := BuildTreeEntries(notes, folders, zerolog.Nop())
	require.Len(t, entries, 3)

	assert.Equal(t, "Journal/Day.md", entries[0].Path)
	assert.Equal(t, "second", entries[0].Content)
	assert.Equal(t, "note-b.md", entries[1].Path)
	assert.Equal(t, "Lost.md", entries[2].Path)
}
