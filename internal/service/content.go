package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"policytrack/internal/match"
	"policytrack/internal/model"
	"policytrack/internal/session"
	"policytrack/internal/storage"
)

// stagingSweepGrace keeps SweepStaged away from uploads still being staged.
const stagingSweepGrace = 5 * time.Minute

// MatchInput is an upload to match against existing documents.
type MatchInput struct {
	Filename string
	Text     string
}

// StageInput is a file to stage for a later create-or-upload decision.
type StageInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	UploadedBy  string
}

// StageResult describes a staged upload and its best candidate documents.
type StageResult struct {
	StagingID     string              `json:"staging_id"`
	Filename      string              `json:"filename"`
	ContentType   string              `json:"content_type"`
	Size          int64               `json:"size"`
	TextExtracted bool                `json:"text_extracted"`
	ExpiresAt     time.Time           `json:"expires_at"`
	Candidates    []model.MatchResult `json:"candidates"`
}

// blob is content placed in storage for a version.
type blob struct {
	ref         string
	filename    string
	contentType string
	size        int64
	// text is the extracted text when already known, empty otherwise.
	text string
	// staged is the claimed staging entry when the content came from a staged upload.
	// Rollback hands it back instead of deleting the content.
	staged *session.StagedUpload
}

// putContent stores a reader under the version key, or claims a staged upload.
func (s *documentService) putContent(ctx context.Context, documentID, versionID string, c Content) (blob, error) {
	if c.StagingID != "" {
		return s.claimStaged(ctx, documentID, versionID, c.StagingID)
	}

	if c.Reader == nil {
		return blob{}, ErrReaderNil
	}
	filename := path.Base(c.Filename)
	key := storage.VersionKey(documentID, versionID, filename)
	info, err := s.store.Put(ctx, key, c.Reader, storage.PutObjectOptions{
		Size:        c.Size,
		ContentType: c.ContentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return blob{}, fmt.Errorf("upload to storage: %w", err)
	}
	return blob{
		ref:         info.Key,
		filename:    filename,
		contentType: c.ContentType,
		size:        info.Size,
	}, nil
}

// claimStaged takes the staging entry and copies its content under the version key.
// The staging object itself is removed by consumeStaged once the version is saved.
func (s *documentService) claimStaged(ctx context.Context, documentID, versionID, stagingID string) (blob, error) {
	staged, err := s.sessions.TakeStaged(ctx, stagingID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return blob{}, ErrStagingExpired
		}
		return blob{}, fmt.Errorf("claim staged upload: %w", err)
	}

	rc, _, err := s.store.Get(ctx, staged.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return blob{}, ErrStagingExpired
		}
		s.releaseStaged(ctx, staged)
		return blob{}, fmt.Errorf("read staged content: %w", err)
	}
	defer rc.Close()

	key := storage.VersionKey(documentID, versionID, staged.Filename)
	info, err := s.store.Put(ctx, key, rc, storage.PutObjectOptions{
		Size:        staged.Size,
		ContentType: staged.ContentType,
		Metadata: map[string]string{
			"original-filename": staged.Filename,
		},
	})
	if err != nil {
		s.releaseStaged(ctx, staged)
		return blob{}, fmt.Errorf("upload to storage: %w", err)
	}
	return blob{
		ref:         info.Key,
		filename:    staged.Filename,
		contentType: staged.ContentType,
		size:        info.Size,
		text:        staged.Text,
		staged:      &staged,
	}, nil
}

// releaseStaged saves a claimed entry again for the rest of its TTL so the caller can
// retry. Content that can no longer be claimed is deleted.
func (s *documentService) releaseStaged(ctx context.Context, u session.StagedUpload) {
	if remaining := u.CreatedAt.Add(s.stagingTTL).Sub(s.now()); remaining > 0 {
		err := s.sessions.SaveStaged(ctx, u, remaining)
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Str("staging_id", u.ID).Msg("release staged upload")
	}
	s.dropStaged(ctx, u)
}

// dropStaged deletes the staging object. A failure is left to SweepStaged.
func (s *documentService) dropStaged(ctx context.Context, u session.StagedUpload) {
	if err := s.store.Delete(ctx, u.Key); err != nil {
		s.log.Warn().Err(err).Str("staging_id", u.ID).Msg("delete staged content")
	}
}

// consumeStaged removes the staging copy once a version owns the content.
func (s *documentService) consumeStaged(ctx context.Context, b blob) {
	if b.staged != nil {
		s.dropStaged(ctx, *b.staged)
	}
}

// rollback removes content stored for a failed write and returns the error to report.
// A claimed staged upload is handed back first.
func (s *documentService) rollback(ctx context.Context, b blob, cause error) error {
	if b.staged != nil {
		s.releaseStaged(ctx, *b.staged)
	}
	if delErr := s.store.Delete(ctx, b.ref); delErr != nil {
		return fmt.Errorf("db save failed: %w; rollback delete failed: %v", cause, delErr)
	}
	return fmt.Errorf("db save failed: %w", cause)
}

// extractText runs the extractor under the configured timeout.
func (s *documentService) extractText(ctx context.Context, ref, contentType string) (string, error) {
	if s.extractor == nil {
		return "", errors.New("no extractor configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()
	return s.extractor.Extract(ctx, ref, contentType)
}

func (s *documentService) Match(ctx context.Context, in MatchInput) ([]model.MatchResult, error) {
	docs, err := s.repo.ListWithVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return s.matcher.Rank(ctx, match.Upload{Filename: in.Filename, Text: in.Text}, docs)
}

// Stage stores the upload under a staging key and remembers it for the staging TTL.
// Uploads that are never claimed are removed by SweepStaged.
func (s *documentService) Stage(ctx context.Context, in StageInput) (*StageResult, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}

	id := uuid.NewString()
	filename := path.Base(in.Filename)
	key := storage.StagingKey(id, filename)
	info, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	text, err := s.extractText(ctx, key, in.ContentType)
	if err != nil {
		s.log.Info().Err(err).Str("staging_id", id).Msg("staged upload has no text, matching on filename only")
		text = ""
	}

	candidates, err := s.Match(ctx, MatchInput{Filename: filename, Text: text})
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, err
	}

	now := s.now()
	staged := session.StagedUpload{
		ID:          id,
		Key:         key,
		Filename:    filename,
		ContentType: in.ContentType,
		Size:        info.Size,
		Text:        text,
		UploadedBy:  uploader(in.UploadedBy),
		CreatedAt:   now,
	}
	if err := s.sessions.SaveStaged(ctx, staged, s.stagingTTL); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("save staged upload: %w", err)
	}

	return &StageResult{
		StagingID:     id,
		Filename:      filename,
		ContentType:   in.ContentType,
		Size:          info.Size,
		TextExtracted: text != "",
		ExpiresAt:     now.Add(s.stagingTTL),
		Candidates:    candidates,
	}, nil
}

// SweepStaged deletes staging objects older than the staging TTL whose entry is gone.
// The extract timeout and stagingSweepGrace are added to the TTL, since an entry is
// saved only after its object is stored and its text extracted.
func (s *documentService) SweepStaged(ctx context.Context) (int, error) {
	if s.sessions == nil {
		return 0, nil
	}
	objects, err := s.store.List(ctx, storage.StagingPrefix)
	if err != nil {
		return 0, fmt.Errorf("list staged content: %w", err)
	}

	cutoff := s.now().Add(-(s.stagingTTL + s.extractTimeout + stagingSweepGrace))
	removed := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		id := storage.StagingIDFromKey(obj.Key)
		_, err := s.sessions.LookupStaged(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, session.ErrNotFound) {
			return removed, fmt.Errorf("lookup staged upload %s: %w", id, err)
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return removed, fmt.Errorf("delete staged content: %w", err)
		}
		removed++
	}
	if removed > 0 {
		s.metrics.StagedSwept.Add(float64(removed))
		s.log.Info().Int("removed", removed).Msg("staged content swept")
	}
	return removed, nil
}

// RunStagingSweep calls SweepStaged every interval until ctx is done.
func RunStagingSweep(ctx context.Context, svc DocumentService, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SweepStaged(ctx); err != nil {
				log.Warn().Err(err).Msg("staging sweep")
			}
		}
	}
}
