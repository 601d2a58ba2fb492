package service

import (
	"context"
	"errors"
	"testing"

	"sidenote-sync-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.SyncSettings
		want     *domain.SyncConfiguration
		wantKind ConfigErrorKind
	}{
		{
			name:     "defaults applied",
			settings: &domain.SyncSettings{Token: " ghp_abc ", Repository: " octo/notes "},
			want: &domain.SyncConfiguration{
				Token: "ghp_abc", Repository: "octo/notes", Owner: "octo", Name: "notes",
				Branch: "main", Mode: domain.SyncModeSingleFile,
			},
		},
		{
			name:     "explicit branch and mode",
			settings: &domain.SyncSettings{Token: "t", Repository: "octo/notes", Branch: "backup", Mode: domain.SyncModePerNoteFiles},
			want: &domain.SyncConfiguration{
				Token: "t", Repository: "octo/notes", Owner: "octo", Name: "notes",
				Branch: "backup", Mode: domain.SyncModePerNoteFiles,
			},
		},
		{name: "nil settings", settings: nil, wantKind: ConfigurationMissing},
		{name: "blank token", settings: &domain.SyncSettings{Token: "   ", Repository: "octo/notes"}, wantKind: ConfigurationMissing},
		{name: "missing repository", settings: &domain.SyncSettings{Token: "t"}, wantKind: ConfigurationMissing},
		{name: "no slash", settings: &domain.SyncSettings{Token: "t", Repository: "notes"}, wantKind: ConfigurationInvalid},
		{name: "two slashes", settings: &domain.SyncSettings{Token: "t", Repository: "a/b/c"}, wantKind: ConfigurationInvalid},
		{name: "empty name", settings: &domain.SyncSettings{Token: "t", Repository: "octo/"}, wantKind: ConfigurationInvalid},
		{name: "url", settings: &domain.SyncSettings{Token: "t", Repository: "https://github.com/octo/notes"}, wantKind: ConfigurationInvalid},
		{name: "host prefix", settings: &domain.SyncSettings{Token: "t", Repository: "github.com/octo"}, wantKind: ConfigurationInvalid},
		{name: "unknown mode", settings: &domain.SyncSettings{Token: "t", Repository: "octo/notes", Mode: "zip"}, wantKind: ConfigurationInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSettings(tt.settings)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, IsConfigError(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigResolverReadsFreshSettings(t *testing.T) {
	repo := &mockSettingsRepository{settings: domain.SyncSettings{Token: "t", Repository: "octo/notes"}}
	resolver := NewConfigResolver(repo)

	cfg, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Branch)

	repo.settings.Branch = "drafts"
	cfg, err = resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "drafts", cfg.Branch)
}

func TestConfigResolverStoreFailure(t *testing.T) {
	resolver := NewConfigResolver(&mockSettingsRepository{getErr: errors.New("couch down")})

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couch down")
}
