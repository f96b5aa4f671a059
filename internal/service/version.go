package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"policytrack/internal/model"
	"policytrack/internal/repository"
	"policytrack/internal/summarize"
)

func (s *documentService) UploadVersion(ctx context.Context, documentID string, in UploadVersionInput) (*model.Version, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	lock := s.documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.find(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Pending(); ok {
		return nil, &StateError{Reason: "document already has a pending version"}
	}
	current, ok := doc.Current()
	if !ok {
		return nil, &StateError{Reason: "document has no published version"}
	}

	versionID := uuid.NewString()
	b, err := s.putContent(ctx, documentID, versionID, in.Content)
	if err != nil {
		return nil, err
	}

	newText := b.text
	cmp := s.compare(ctx, doc.Name, current, b.ref, b.contentType, &newText, in.Notes)

	v := model.Version{
		ID:          versionID,
		DocumentID:  documentID,
		ContentRef:  b.ref,
		Filename:    b.filename,
		ContentType: b.contentType,
		UploadedBy:  uploader(in.UploadedBy),
		Notes:       in.Notes,
		Size:        b.size,
		Status:      model.StatusPending,
		CreatedAt:   s.now(),
		Comparison:  &cmp,
	}
	if err := s.repo.CreateVersion(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			_ = s.rollback(ctx, b, err)
			return nil, &StateError{Reason: "document already has a pending version"}
		}
		return nil, s.rollback(ctx, b, err)
	}
	s.consumeStaged(ctx, b)
	s.metrics.VersionsUploaded.Inc()

	s.log.Info().
		Str("document_id", documentID).
		Str("version_id", versionID).
		Int("changes", cmp.Stats.Total).
		Bool("fallback", cmp.Fallback).
		Msg("version submitted for review")
	return &v, nil
}

func (s *documentService) Approve(ctx context.Context, documentID, versionID string) (*PublishResult, error) {
	if documentID == "" || versionID == "" {
		return nil, ErrIDRequired
	}
	lock := s.documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	doc, v, err := s.findVersion(ctx, documentID, versionID)
	if err != nil {
		return nil, err
	}
	if !v.IsPending() {
		return nil, &StateError{Reason: "only pending versions can be approved"}
	}

	now := s.now()
	err = s.repo.PublishVersion(ctx, repository.PublishParams{
		DocumentID:        documentID,
		VersionID:         versionID,
		PreviousVersionID: doc.CurrentVersionID,
		At:                now,
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		s.metrics.PublishConflicts.Inc()
		return nil, ErrConflict
	case errors.Is(err, sql.ErrNoRows):
		return nil, &StateError{Reason: "version is no longer pending"}
	case err != nil:
		return nil, fmt.Errorf("publish version: %w", err)
	}

	v.Status = model.StatusPublished
	doc.CurrentVersionID = versionID
	doc.PendingVersionID = ""
	doc.UpdatedAt = now
	for i := range doc.Versions {
		if doc.Versions[i].ID == versionID {
			doc.Versions[i] = v
		}
	}
	s.metrics.VersionsApproved.Inc()

	idx := s.index(ctx, doc, v, "")
	s.log.Info().
		Str("document_id", documentID).
		Str("version_id", versionID).
		Str("index", idx.Status).
		Msg("version approved")
	return &PublishResult{Document: doc, Version: v, Index: idx}, nil
}

func (s *documentService) Reject(ctx context.Context, documentID, versionID string) error {
	if documentID == "" || versionID == "" {
		return ErrIDRequired
	}
	lock := s.documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	_, v, err := s.findVersion(ctx, documentID, versionID)
	if err != nil {
		return err
	}
	if !v.IsPending() {
		return &StateError{Reason: "only pending versions can be rejected"}
	}

	// Delete from storage first; if this fails the version stays pending and can be retried
	if err := s.store.Delete(ctx, v.ContentRef); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.DeleteVersion(ctx, documentID, versionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		// The content is already gone; the record stays pending until a retried Reject removes it
		s.log.Error().Err(err).
			Str("document_id", documentID).
			Str("version_id", versionID).
			Str("content_ref", v.ContentRef).
			Msg("version content deleted but record remains pending")
		return fmt.Errorf("delete version: %w", err)
	}
	s.metrics.VersionsRejected.Inc()

	s.log.Info().
		Str("document_id", documentID).
		Str("version_id", versionID).
		Msg("version rejected")
	return nil
}

func (s *documentService) Compare(ctx context.Context, documentID, fromID, toID string) (*CompareResult, error) {
	if documentID == "" || fromID == "" || toID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.find(ctx, documentID)
	if err != nil {
		return nil, err
	}
	from, ok := doc.Version(fromID)
	if !ok {
		return nil, ErrNotFound
	}
	to, ok := doc.Version(toID)
	if !ok {
		return nil, ErrNotFound
	}

	res := &CompareResult{DocumentID: documentID, FromVersionID: fromID, ToVersionID: toID}
	if to.Comparison != nil && to.Comparison.BaseVersionID == fromID {
		res.Precomputed = true
		res.Comparison = *to.Comparison
		return res, nil
	}

	var toText string
	res.Comparison = s.compare(ctx, doc.Name, from, to.ContentRef, to.ContentType, &toText, to.Notes)
	return res, nil
}

func (s *documentService) findVersion(ctx context.Context, documentID, versionID string) (*model.Document, model.Version, error) {
	doc, err := s.find(ctx, documentID)
	if err != nil {
		return nil, model.Version{}, err
	}
	v, ok := doc.Version(versionID)
	if !ok {
		return nil, model.Version{}, ErrNotFound
	}
	return doc, v, nil
}

// compare diffs base against the new content. newText may already hold the new
// version's text; it is filled in when extracted here. When either text is unavailable
// the result falls back to the uploader's notes with no changes.
func (s *documentService) compare(ctx context.Context, documentName string, base model.Version, ref, contentType string, newText *string, notes string) model.Comparison {
	cmp := model.Comparison{BaseVersionID: base.ID, Changes: []model.Change{}}

	fallback := func(side string, err error) model.Comparison {
		s.metrics.ComparisonFallbacks.WithLabelValues(side).Inc()
		s.log.Warn().Err(err).
			Str("base_version_id", base.ID).
			Str("side", side).
			Msg("comparison fell back to notes")
		cmp.Fallback = true
		cmp.FallbackReason = fmt.Sprintf("%s text unavailable: %v", side, err)
		cmp.Summary = notes
		return cmp
	}

	oldText, err := s.extractText(ctx, base.ContentRef, base.ContentType)
	if err != nil {
		return fallback("base", err)
	}
	if *newText == "" {
		if *newText, err = s.extractText(ctx, ref, contentType); err != nil {
			return fallback("new", err)
		}
	}

	start := time.Now()
	res := s.diff.Compare(oldText, *newText, documentName)
	s.metrics.DiffDuration.Observe(time.Since(start).Seconds())

	cmp.Changes = res.Changes
	cmp.Stats = res.Stats
	cmp.Summary = s.summarize(ctx, documentName, res.Changes)
	return cmp
}

func (s *documentService) summarize(ctx context.Context, documentName string, changes []model.Change) string {
	if len(changes) == 0 || s.summarizer == nil {
		return summarize.Fallback(len(changes))
	}
	summary, err := s.summarizer.Summarize(ctx, documentName, changes)
	if err != nil {
		s.metrics.SummaryFallbacks.Inc()
		s.log.Warn().Err(err).Msg("summarizer failed, using fallback summary")
		return summarize.Fallback(len(changes))
	}
	return summary
}
