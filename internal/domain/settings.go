package domain

import "time"

type SyncMode string

const (
	SyncModeSingleFile   SyncMode = "single-file"
	SyncModePerNoteFiles SyncMode = "per-note-files"
)

const DefaultBranch = "main"

// SyncSettings is the persisted, unvalidated form of the sync configuration,
// exactly as the settings page saved it.
type SyncSettings struct {
	Token      string    `json:"token"`
	Repository string    `json:"repository"`
	Branch     string    `json:"branch"`
	Mode       SyncMode  `json:"mode"`
	AutoSync   bool      `json:"auto_sync"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SyncConfiguration is a validated SyncSettings, resolved fresh for every sync.
type SyncConfiguration struct {
	Token      string
	Repository string
	Owner      string
	Name       string
	Branch     string
	Mode       SyncMode
}

type UpdateSettingsRequest struct {
	Token      *string  `json:"token"`
	Repository *string  `json:"repository" validate:"omitempty,max=200"`
	Branch     *string  `json:"branch" validate:"omitempty,max=250"`
	Mode       SyncMode `json:"mode" validate:"omitempty,oneof=single-file per-note-files"`
	AutoSync   *bool    `json:"auto_sync"`
}

type SettingsResponse struct {
	TokenHint  string    `json:"token_hint,omitempty"`
	HasToken   bool      `json:"has_token"`
	Repository string    `json:"repository"`
	Branch     string    `json:"branch"`
	Mode       SyncMode  `json:"mode"`
	AutoSync   bool      `json:"auto_sync"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *SyncSettings) ToResponse() *SettingsResponse {
	resp := &SettingsResponse{
		HasToken:   s.Token != "",
		Repository: s.Repository,
		Branch:     s.Branch,
		Mode:       s.Mode,
		AutoSync:   s.AutoSync,
		UpdatedAt:  s.UpdatedAt,
	}
	if len(s.Token) > 4 {
		resp.TokenHint = "…" + s.Token[len(s.Token)-4:]
	}
	return resp
}
