package repository

import (
	"context"
	"fmt"
	"net/http"

	"sidenote-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
	"github.com/rs/zerolog"
)

const (
	syncRunDocType = "sync_run"

	syncRunIndexDoc  = "sync-runs"
	syncRunIndexName = "type-finished"

	// page size for unbounded reads and pruning
	syncRunPageSize = 100
)

// SyncRunRepository keeps a bounded history of sync outcomes.
type SyncRunRepository interface {
	Record(ctx context.Context, run *domain.SyncRun) error
	Recent(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type syncRunDoc struct {
	ID   string `json:"_id"`
	Rev  string `json:"_rev,omitempty"`
	Type string `json:"type"`
	// FinishedNS orders runs; RFC3339 strings do not sort reliably.
	FinishedNS int64 `json:"finished_ns"`
	domain.SyncRun
}

type syncRunRepository struct {
	client *kivik.Client
	dbName string
	keep   int
	log    zerolog.Logger
}

// NewSyncRunRepository keeps at most keep runs; older ones are deleted on
// Record. keep <= 0 keeps everything.
func NewSyncRunRepository(client *kivik.Client, dbName string, keep int, log zerolog.Logger) SyncRunRepository {
	return &syncRunRepository{
		client: client,
		dbName: dbName,
		keep:   keep,
		log:    log.With().Str("component", "sync_runs").Logger(),
	}
}

// EnsureSyncRunIndex creates the Mango index the history queries sort on.
// Creating an index that already exists is a no-op in CouchDB.
func EnsureSyncRunIndex(ctx context.Context, client *kivik.Client, dbName string) error {
	if err := client.DB(dbName).CreateIndex(ctx, syncRunIndexDoc, syncRunIndexName, syncRunIndex()); err != nil {
		return fmt.Errorf("failed to create sync run index: %w", err)
	}
	return nil
}

func syncRunIndex() map[string]interface{} {
	return map[string]interface{}{
		"fields": []string{"type", "finished_ns"},
	}
}

// syncRunQuery selects runs newest first. The sort names both index fields
// in the same direction so CouchDB can serve it from the index.
func syncRunQuery(skip, limit int) map[string]interface{} {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"type": syncRunDocType,
		},
		"sort": []map[string]string{
			{"type": "desc"},
			{"finished_ns": "desc"},
		},
		"use_index": []string{syncRunIndexDoc, syncRunIndexName},
		"limit":     limit,
	}
	if skip > 0 {
		query["skip"] = skip
	}
	return query
}

func (r *syncRunRepository) Record(ctx context.Context, run *domain.SyncRun) error {
	db := r.client.DB(r.dbName)

	doc := syncRunDoc{
		ID:         "syncrun:" + run.ID,
		Type:       syncRunDocType,
		FinishedNS: run.FinishedAt.UnixNano(),
		SyncRun:    *run,
	}
	if _, err := db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}

	return r.prune(ctx, db)
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all of them.
func (r *syncRunRepository) Recent(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	db := r.client.DB(r.dbName)

	if limit > 0 {
		docs, err := r.page(ctx, db, 0, limit)
		if err != nil {
			return nil, err
		}
		return toRuns(docs), nil
	}

	var all []syncRunDoc
	for skip := 0; ; skip += syncRunPageSize {
		docs, err := r.page(ctx, db, skip, syncRunPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
		if len(docs) < syncRunPageSize {
			break
		}
	}
	return toRuns(all), nil
}

func (r *syncRunRepository) page(ctx context.Context, db *kivik.DB, skip, limit int) ([]syncRunDoc, error) {
	rows := db.Find(ctx, syncRunQuery(skip, limit))
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer rows.Close()

	var docs []syncRunDoc
	for rows.Next() {
		var doc syncRunDoc
		if err := rows.ScanDoc(&doc); err != nil {
			r.log.Warn().Err(err).Msg("skipping unreadable sync run")
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sync runs: %w", err)
	}
	return docs, nil
}

// prune deletes everything past the newest keep runs, a page at a time.
func (r *syncRunRepository) prune(ctx context.Context, db *kivik.DB) error {
	if r.keep <= 0 {
		return nil
	}

	for {
		stale, err := r.page(ctx, db, r.keep, syncRunPageSize)
		if err != nil {
			return err
		}

		for _, doc := range stale {
			if _, err := db.Delete(ctx, doc.ID, doc.Rev); err != nil && kivik.HTTPStatus(err) != http.StatusNotFound {
				return fmt.Errorf("failed to prune sync run %s: %w", doc.ID, err)
			}
		}
		if len(stale) > 0 {
			r.log.Debug().Int("deleted", len(stale)).Msg("pruned sync history")
		}
		if len(stale) < syncRunPageSize {
			return nil
		}
	}
}

func toRuns(docs []syncRunDoc) []domain.SyncRun {
	runs := make([]domain.SyncRun, 0, len(docs))
	for _, doc := range docs {
		runs = append(runs, doc.SyncRun)
	}
	return runs
}
