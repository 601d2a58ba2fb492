package domain

import "time"

// Note mirrors the record the sidebar keeps in its local store. Content is the
// editor's HTML serialization and is pushed as-is.
type Note struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Folder struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the full note/folder collection as last written by the sidebar.
type Snapshot struct {
	Notes     []Note    `json:"notes"`
	Folders   []Folder  `json:"folders"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PutSnapshotRequest struct {
	Notes   []Note   `json:"notes" validate:"dive"`
	Folders []Folder `json:"folders" validate:"dive"`
}

// FolderNames indexes folder display names by id.
func FolderNames(folders []Folder) map[string]string {
	names := make(map[string]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}
	return names
}
