package model

import (
	"sort"
	"time"
)

// VersionStatus is the lifecycle state of a Version.
type VersionStatus string

const (
	StatusPending   VersionStatus = "pending"
	StatusPublished VersionStatus = "published"
)

// Document is a policy document tracked across versions.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ShortCode        string    `json:"short_code,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	CurrentVersionID string    `json:"current_version_id,omitempty"`
	// PendingVersionID is set while an uploaded version waits for review.
	PendingVersionID string    `json:"pending_version_id,omitempty"`
	Versions         []Version `json:"versions,omitempty"`
}

// Version is one uploaded revision of a Document. Versions are listed in upload order,
// which is not chronological once out-of-order uploads happen; use SortedVersions.
type Version struct {
	ID          string        `json:"id"`
	DocumentID  string        `json:"document_id"`
	ContentRef  string        `json:"content_ref"`
	Filename    string        `json:"filename"`
	ContentType string        `json:"content_type"`
	UploadedBy  string        `json:"uploaded_by"`
	Notes       string        `json:"notes,omitempty"`
	Size        int64         `json:"size"`
	Status      VersionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	// Comparison is computed once when a version enters review and is never recomputed.
	Comparison *Comparison `json:"comparison,omitempty"`
}

// IsPending reports whether the version awaits review.
func (v Version) IsPending() bool { return v.Status == StatusPending }

// Version returns the version with the given id.
func (d *Document) Version(id string) (Version, bool) {
	for _, v := range d.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// Current returns the currently published version, if any.
func (d *Document) Current() (Version, bool) {
	if d.CurrentVersionID == "" {
		return Version{}, false
	}
	return d.Version(d.CurrentVersionID)
}

// Pending returns the version awaiting review, if any.
func (d *Document) Pending() (Version, bool) {
	if d.PendingVersionID != "" {
		if v, ok := d.Version(d.PendingVersionID); ok {
			return v, true
		}
	}
	for _, v := range d.Versions {
		if v.IsPending() {
			return v, true
		}
	}
	return Version{}, false
}

// SortedVersions returns a copy of the versions ordered by creation time, oldest first.
func (d *Document) SortedVersions() []Version {
	out := make([]Version, len(d.Versions))
	copy(out, d.Versions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
