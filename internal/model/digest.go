package model

import "time"

// PeriodType is the calendar unit of a digest.
type PeriodType string

const (
	PeriodWeek  PeriodType = "week"
	PeriodMonth PeriodType = "month"
)

// DigestPeriod is a resolved digest window. Period is the ISO week (1-53) or month (1-12).
type DigestPeriod struct {
	Type   PeriodType `json:"type"`
	Year   int        `json:"year"`
	Period int        `json:"period"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Label  string     `json:"label"`
}

// Contains reports whether t falls inside the inclusive window.
func (p DigestPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// DigestChange is version metadata for a change inside a digest window.
type DigestChange struct {
	VersionID  string        `json:"version_id"`
	CreatedAt  time.Time     `json:"created_at"`
	UploadedBy string        `json:"uploaded_by"`
	Notes      string        `json:"notes,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	Status     VersionStatus `json:"status"`
}

// DigestEntry lists a document's in-period changes, newest first.
type DigestEntry struct {
	DocumentID   string         `json:"document_id"`
	DocumentName string         `json:"document_name"`
	ShortCode    string         `json:"short_code,omitempty"`
	IsNew        bool           `json:"is_new"`
	Changes      []DigestChange `json:"changes"`
}

// Digest aggregates all document changes within a period.
type Digest struct {
	Period          DigestPeriod  `json:"period"`
	Documents       []DigestEntry `json:"documents"`
	NewPolicies     int           `json:"new_policies"`
	UpdatedPolicies int           `json:"updated_policies"`
	TotalChanges    int           `json:"total_changes"`
}
