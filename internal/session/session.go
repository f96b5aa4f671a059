// Package session stores reviewer sessions and staged uploads, both with a TTL.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for missing or expired entries.
var ErrNotFound = errors.New("session: not found or expired")

// Session identifies the person behind a browser cookie. Name is recorded as the
// uploader of versions.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StagedUpload is a file stored ahead of the create-or-upload decision, with its
// extracted text kept so the decision does not re-extract.
type StagedUpload struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Text        string    `json:"text,omitempty"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists sessions and staged uploads.
type Store interface {
	SaveSession(ctx context.Context, s Session, ttl time.Duration) error
	LookupSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error

	SaveStaged(ctx context.Context, u StagedUpload, ttl time.Duration) error
	LookupStaged(ctx context.Context, id string) (StagedUpload, error)
	// TakeStaged returns the staged upload and removes it in one step, so only one
	// caller can claim a staging id.
	TakeStaged(ctx context.Context, id string) (StagedUpload, error)
}
