package service

import (
	"context"
	"fmt"
	"strings"

	"sidenote-sync-server/internal/domain"
)

// SettingsProvider is the source of persisted sync settings.
type SettingsProvider interface {
	Get(ctx context.Context) (*domain.SyncSettings, error)
}

type ConfigResolver struct {
	settings SettingsProvider
}

func NewConfigResolver(settings SettingsProvider) *ConfigResolver {
	return &ConfigResolver{settings: settings}
}

// Resolve reads the settings and validates them. Nothing is cached: every
// sync sees the latest saved values.
func (r *ConfigResolver) Resolve(ctx context.Context) (*domain.SyncConfiguration, error) {
	settings, err := r.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync settings: %w", err)
	}
	return ResolveSettings(settings)
}

func ResolveSettings(settings *domain.SyncSettings) (*domain.SyncConfiguration, error) {
	if settings == nil {
		return nil, &ConfigError{Kind: ConfigurationMissing, Field: "token"}
	}

	token := strings.TrimSpace(settings.Token)
	if token == "" {
		return nil, &ConfigError{Kind: ConfigurationMissing, Field: "token"}
	}

	repo := strings.TrimSpace(settings.Repository)
	if repo == "" {
		return nil, &ConfigError{Kind: ConfigurationMissing, Field: "repository"}
	}

	owner, name, err := ParseRepository(repo)
	if err != nil {
		return nil, err
	}

	branch := strings.TrimSpace(settings.Branch)
	if branch == "" {
		branch = domain.DefaultBranch
	}

	mode := settings.Mode
	switch mode {
	case "":
		mode = domain.SyncModeSingleFile
	case domain.SyncModeSingleFile, domain.SyncModePerNoteFiles:
	default:
		return nil, &ConfigError{Kind: ConfigurationInvalid, Field: "mode", Reason: fmt.Sprintf("%q is not a sync mode", mode)}
	}

	return &domain.SyncConfiguration{
		Token:      token,
		Repository: owner + "/" + name,
		Owner:      owner,
		Name:       name,
		Branch:     branch,
		Mode:       mode,
	}, nil
}

// ParseRepository splits "owner/name". A pasted URL or host-qualified path is
// rejected rather than guessed at.
func ParseRepository(repo string) (string, string, error) {
	repo = strings.TrimSpace(repo)
	lower := strings.ToLower(repo)

	if strings.Contains(lower, "github.com") || strings.Contains(lower, "://") || strings.HasPrefix(lower, "www.") {
		return "", "", &ConfigError{
			Kind:   ConfigurationInvalid,
			Field:  "repository",
			Reason: fmt.Sprintf("%q looks like a URL; use the owner/name form", repo),
		}
	}

	if strings.Count(repo, "/") != 1 {
		return "", "", &ConfigError{
			Kind:   ConfigurationInvalid,
			Field:  "repository",
			Reason: fmt.Sprintf("%q must be in owner/name form", repo),
		}
	}

	parts := strings.SplitN(repo, "/", 2)
	owner, name := parts[0], parts[1]
	if owner == "" || name == "" {
		return "", "", &ConfigError{
			Kind:   ConfigurationInvalid,
			Field:  "repository",
			Reason: fmt.Sprintf("%q must be in owner/name form", repo),
		}
	}
	if strings.Contains(owner, ".") {
		return "", "", &ConfigError{
			Kind:   ConfigurationInvalid,
			Field:  "repository",
			Reason: fmt.Sprintf("%q looks like a host name; use the owner/name form", repo),
		}
	}

	return owner, name, nil
}
