package model

// ChangeType is the kind of a detected change. Modifications surface as an
// adjacent removed+added pair.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
)

// Change is a single significant difference between two document texts.
type Change struct {
	Section string     `json:"section"`
	Type    ChangeType `json:"type"`
	Summary string     `json:"summary"`
	Before  string     `json:"before,omitempty"`
	After   string     `json:"after,omitempty"`
}

// DiffStats aggregates a change list.
type DiffStats struct {
	Added     int  `json:"added"`
	Removed   int  `json:"removed"`
	Total     int  `json:"total_changes"`
	Truncated bool `json:"truncated,omitempty"`
}

// Comparison is the outcome of comparing a version against a base version.
// Fallback marks a result where text could not be extracted: Changes is empty and
// Summary carries the uploader's notes, so "no changes" and "could not compare" differ.
type Comparison struct {
	BaseVersionID  string    `json:"base_version_id"`
	Changes        []Change  `json:"changes"`
	Stats          DiffStats `json:"stats"`
	Summary        string    `json:"summary"`
	Fallback       bool      `json:"fallback"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
}
