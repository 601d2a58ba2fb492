package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sidenote-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

const settingsDocID = "settings:sync"

// SettingsRepository persists the single sync settings record.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.SyncSettings, error)
	Save(ctx context.Context, settings *domain.SyncSettings) error
}

type settingsDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	domain.SyncSettings
}

type settingsRepository struct {
	client *kivik.Client
	dbName string
}

func NewSettingsRepository(client *kivik.Client, dbName string) SettingsRepository {
	return &settingsRepository{
		client: client,
		dbName: dbName,
	}
}

// Get returns zero-valued settings when none were saved yet.
func (r *settingsRepository) Get(ctx context.Context) (*domain.SyncSettings, error) {
	db := r.client.DB(r.dbName)

	var doc settingsDoc
	if err := db.Get(ctx, settingsDocID).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return &domain.SyncSettings{}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings := doc.SyncSettings
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *domain.SyncSettings) error {
	db := r.client.DB(r.dbName)

	doc := settingsDoc{ID: settingsDocID, SyncSettings: *settings}
	doc.UpdatedAt = time.Now()

	var existing settingsDoc
	if err := db.Get(ctx, settingsDocID).ScanDoc(&existing); err == nil {
		doc.Rev = existing.Rev
	} else if kivik.HTTPStatus(err) != http.StatusNotFound {
		return fmt.Errorf("failed to read settings revision: %w", err)
	}

	if _, err := db.Put(ctx, settingsDocID, doc); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	settings.UpdatedAt = doc.UpdatedAt
	return nil
}
