package search

import (
	"context"
	"fmt"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
)

// Meili implements Indexer via Meilisearch.
type Meili struct {
	client meili.ServiceManager
	index  string
	log    zerolog.Logger
}

// NewMeili creates a Meilisearch-backed indexer. It does not contact the server;
// call Configure once at startup.
func NewMeili(url, apiKey, index string, log zerolog.Logger) *Meili {
	return &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		index:  index,
		log:    log,
	}
}

var _ Indexer = (*Meili)(nil)

// Configure checks connectivity and creates the index with its filterable attributes.
func (m *Meili) Configure() error {
	if _, err := m.client.Health(); err != nil {
		return fmt.Errorf("meilisearch unavailable: %w", err)
	}
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        m.index,
		PrimaryKey: "id",
	}); err != nil {
		m.log.Debug().Err(err).Str("index", m.index).Msg("create index (may already exist)")
	}

	filterable := []interface{}{"document_id", "short_title", "uploaded_by"}
	if _, err := m.client.Index(m.index).UpdateFilterableAttributes(&filterable); err != nil {
		return fmt.Errorf("update filterable attributes: %w", err)
	}
	return nil
}

// Replace deletes the document's previous content and enqueues the new record. Meilisearch
// runs tasks of one index in enqueue order, so the upload lands after the delete.
func (m *Meili) Replace(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = rec.DocumentID
	}
	idx := m.client.Index(m.index)

	if _, err := idx.DeleteDocumentWithContext(ctx, rec.DocumentID, nil); err != nil {
		return fmt.Errorf("delete indexed content of %s: %w", rec.DocumentID, err)
	}
	if _, err := idx.AddDocumentsWithContext(ctx, []Record{rec}, nil); err != nil {
		return fmt.Errorf("index content of %s: %w", rec.DocumentID, err)
	}
	return nil
}
