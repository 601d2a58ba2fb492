package domain

import "time"

const (
	BackupVersion  = "1.0"
	BackupFilePath = "sidebar-notes-data.json"
)

// SyncResult is what a sync attempt reports back to the sidebar. Exactly one
// of Message (success) or Error (failure) is set.
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func SyncSucceeded(message string) SyncResult {
	return SyncResult{Success: true, Message: message}
}

func SyncFailed(err error) SyncResult {
	msg := "unknown sync error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return SyncResult{Success: false, Error: msg}
}

type SyncState string

const (
	SyncStateIdle      SyncState = "idle"
	SyncStateSyncing   SyncState = "syncing"
	SyncStateSucceeded SyncState = "succeeded"
	SyncStateFailed    SyncState = "failed"
)

type SyncStatus struct {
	State        SyncState  `json:"state"`
	IsSyncing    bool       `json:"isSyncing"`
	LastSyncTime *time.Time `json:"lastSyncTime"`
	SyncError    string     `json:"syncError,omitempty"`
	RunID        string     `json:"runId,omitempty"`
	Trigger      string     `json:"trigger,omitempty"`
}

// BackupDocument is the single-file backup layout.
type BackupDocument struct {
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Folders   []BackupFolder `json:"folders"`
	Notes     []BackupNote   `json:"notes"`
}

type BackupFolder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type BackupNote struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewBackupDocument(notes []Note, folders []Folder, now time.Time) *BackupDocument {
	doc := &BackupDocument{
		Version:   BackupVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Folders:   make([]BackupFolder, 0, len(folders)),
		Notes:     make([]BackupNote, 0, len(notes)),
	}
	for _, f := range folders {
		doc.Folders = append(doc.Folders, BackupFolder{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt})
	}
	for _, n := range notes {
		doc.Notes = append(doc.Notes, BackupNote{
			ID:        n.ID,
			Name:      n.Name,
			Content:   n.Content,
			FolderID:  n.FolderID,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return doc
}

// Snapshot converts a backup document back into a note/folder collection.
func (d *BackupDocument) Snapshot() *Snapshot {
	snap := &Snapshot{
		Notes:   make([]Note, 0, len(d.Notes)),
		Folders: make([]Folder, 0, len(d.Folders)),
	}
	for _, f := range d.Folders {
		snap.Folders = append(snap.Folders, Folder{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt})
	}
	for _, n := range d.Notes {
		snap.Notes = append(snap.Notes, Note{
			ID:        n.ID,
			Name:      n.Name,
			Content:   n.Content,
			FolderID:  n.FolderID,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return snap
}

// SyncRun is the persisted outcome of one sync attempt.
type SyncRun struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
