package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sidenote-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

const snapshotDocID = "snapshot:current"

// SnapshotRepository stores the latest note/folder collection written by the sidebar.
type SnapshotRepository interface {
	Get(ctx context.Context) (*domain.Snapshot, error)
	Replace(ctx context.Context, snapshot *domain.Snapshot) error
}

type snapshotDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	domain.Snapshot
}

type snapshotRepository struct {
	client *kivik.Client
	dbName string
}

func NewSnapshotRepository(client *kivik.Client, dbName string) SnapshotRepository {
	return &snapshotRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *snapshotRepository) Get(ctx context.Context) (*domain.Snapshot, error) {
	db := r.client.DB(r.dbName)

	var doc snapshotDoc
	if err := db.Get(ctx, snapshotDocID).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return &domain.Snapshot{Notes: []domain.Note{}, Folders: []domain.Folder{}}, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snapshot := doc.Snapshot
	if snapshot.Notes == nil {
		snapshot.Notes = []domain.Note{}
	}
	if snapshot.Folders == nil {
		snapshot.Folders = []domain.Folder{}
	}
	return &snapshot, nil
}

func (r *snapshotRepository) Replace(ctx context.Context, snapshot *domain.Snapshot) error {
	db := r.client.DB(r.dbName)

	doc := snapshotDoc{ID: snapshotDocID, Snapshot: *snapshot}
	doc.UpdatedAt = time.Now()

	var existing struct {
		Rev string `json:"_rev"`
	}
	if err := db.Get(ctx, snapshotDocID).ScanDoc(&existing); err == nil {
		doc.Rev = existing.Rev
	} else if kivik.HTTPStatus(err) != http.StatusNotFound {
		return fmt.Errorf("failed to read snapshot revision: %w", err)
	}

	if _, err := db.Put(ctx, snapshotDocID, doc); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	snapshot.UpdatedAt = doc.UpdatedAt
	return nil
}
