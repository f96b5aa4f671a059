// Package search pushes published policy content into the retrieval index.
package search

import "context"

// Record is the indexed form of a document's published content. The index keeps
// exactly one record per document, keyed by document id.
type Record struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	ShortTitle   string `json:"short_title"`
	UploadedBy   string `json:"uploaded_by"`
	VersionID    string `json:"version_id"`
	Content      string `json:"content"`
}

// Indexer maintains the retrieval index.
type Indexer interface {
	// Replace removes whatever is indexed for rec.DocumentID, then uploads rec.
	Replace(ctx context.Context, rec Record) error
}
