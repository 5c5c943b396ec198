package model

import "time"

// BackupStatus tracks an upload from creation to its outcome.
type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Terminal reports whether no further status change is expected.
func (s BackupStatus) Terminal() bool {
	return s == BackupStatusCompleted || s == BackupStatusFailed
}

// BackupRecord is the local history entry for one encrypted list snapshot.
// Key names the object in the bucket.
type BackupRecord struct {
	ID          int64        `json:"id"`
	Key         string       `json:"key"`
	Status      BackupStatus `json:"status"`
	ItemCount   int          `json:"item_count"`
	SizeBytes   int64        `json:"size_bytes"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// Duration is the upload time of a finished backup, or zero.
func (b BackupRecord) Duration() time.Duration {
	if b.StartedAt == nil || b.CompletedAt == nil {
		return 0
	}
	return b.CompletedAt.Sub(*b.StartedAt)
}
