// Package memory is an in-process repository.DocumentRepository used for local runs
// without Postgres and for service tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"policytrack/internal/model"
	"policytrack/internal/repository"
)

// DocumentMemory keeps documents in a map guarded by a RWMutex. Reads return copies.
type DocumentMemory struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
}

// NewDocumentMemory creates an empty store.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[string]*model.Document)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

func (r *DocumentMemory) CreateDocument(ctx context.Context, doc *model.Document, first *model.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; ok {
		return repository.ErrConflict
	}
	stored := *doc
	stored.Versions = []model.Version{*first}
	stored.PendingVersionID = ""
	r.docs[doc.ID] = &stored
	return nil
}

func (r *DocumentMemory) FindByID(ctx context.Context, id string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := clone(d)
	return &out, nil
}

func (r *DocumentMemory) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]model.Document, 0, len(r.docs))
	for _, d := range r.docs {
		c := clone(d)
		c.Versions = nil
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := min(max(pq.Offset, 0), len(all))
	end := len(all)
	if pq.Limit > 0 {
		end = min(start+pq.Limit, len(all))
	}
	return &repository.PageResult[model.Document]{
		Items: all[start:end],
		Total: len(all),
	}, nil
}

func (r *DocumentMemory) ListWithVersions(ctx context.Context) ([]model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *DocumentMemory) CreateVersion(ctx context.Context, v *model.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[v.DocumentID]
	if !ok {
		return sql.ErrNoRows
	}
	if d.PendingVersionID != "" {
		return repository.ErrConflict
	}
	d.Versions = append(d.Versions, *v)
	if v.IsPending() {
		d.PendingVersionID = v.ID
	}
	return nil
}

func (r *DocumentMemory) PublishVersion(ctx context.Context, p repository.PublishParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[p.DocumentID]
	if !ok {
		return sql.ErrNoRows
	}
	i := indexOf(d, p.VersionID)
	if i < 0 || !d.Versions[i].IsPending() {
		return sql.ErrNoRows
	}
	if d.CurrentVersionID != p.PreviousVersionID {
		return repository.ErrConflict
	}
	d.Versions[i].Status = model.StatusPublished
	d.CurrentVersionID = p.VersionID
	d.PendingVersionID = ""
	d.UpdatedAt = p.At
	return nil
}

func (r *DocumentMemory) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[documentID]
	if !ok {
		return sql.ErrNoRows
	}
	i := indexOf(d, versionID)
	if i < 0 || !d.Versions[i].IsPending() {
		return sql.ErrNoRows
	}
	d.Versions = append(d.Versions[:i:i], d.Versions[i+1:]...)
	if d.PendingVersionID == versionID {
		d.PendingVersionID = ""
	}
	return nil
}

func indexOf(d *model.Document, versionID string) int {
	for i, v := range d.Versions {
		if v.ID == versionID {
			return i
		}
	}
	return -1
}

func clone(d *model.Document) model.Document {
	out := *d
	out.Versions = append([]model.Version(nil), d.Versions...)
	return out
}
