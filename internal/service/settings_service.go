package service

import (
	"context"
	"strings"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/repository"
)

type SettingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context) (*domain.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settings.ToResponse(), nil
}

// Update merges the fields present in req into the stored settings. A
// repository value is checked for shape before it is saved; the token is
// only checked by the remote at sync time.
func (s *SettingsService) Update(ctx context.Context, req *domain.UpdateSettingsRequest) (*domain.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.Token != nil {
		settings.Token = strings.TrimSpace(*req.Token)
	}
	if req.Repository != nil {
		repo := strings.TrimSpace(*req.Repository)
		if repo != "" {
			if _, _, err := ParseRepository(repo); err != nil {
				return nil, err
			}
		}
		settings.Repository = repo
	}
	if req.Branch != nil {
		settings.Branch = strings.TrimSpace(*req.Branch)
	}
	if req.Mode != "" {
		settings.Mode = req.Mode
	}
	if req.AutoSync != nil {
		settings.AutoSync = *req.AutoSync
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings.ToResponse(), nil
}
