package repository

import (
	"context"
	"errors"
	"time"

	"policytrack/internal/model"
)

// ErrConflict reports a write that lost a race: the current version moved since it was
// read, or the document already has a pending version.
var ErrConflict = errors.New("repository: conflicting write")

// DocumentRepository defines data access for documents and their versions.
// No business logic here, strictly persistence operations. Missing rows are reported
// as sql.ErrNoRows.
type DocumentRepository interface {
	// CreateDocument inserts a document together with its first, published version.
	CreateDocument(ctx context.Context, doc *model.Document, first *model.Version) error

	// FindByID returns a document with all of its versions.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents without versions and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// ListWithVersions returns every document with its full version history.
	ListWithVersions(ctx context.Context) ([]model.Document, error)

	// CreateVersion inserts a pending version. ErrConflict when one is already pending.
	CreateVersion(ctx context.Context, v *model.Version) error

	// PublishVersion marks a pending version published and moves current_version_id to it,
	// provided current_version_id still equals PreviousVersionID.
	PublishVersion(ctx context.Context, p PublishParams) error

	// DeleteVersion hard-deletes a pending version.
	DeleteVersion(ctx context.Context, documentID, versionID string) error
}

// PublishParams describes a compare-and-swap publication.
type PublishParams struct {
	DocumentID        string
	VersionID         string
	PreviousVersionID string
	At                time.Time
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
