package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"policytrack/internal/diff"
	"policytrack/internal/extract"
	"policytrack/internal/match"
	"policytrack/internal/metrics"
	"policytrack/internal/model"
	"policytrack/internal/repository"
	"policytrack/internal/search"
	"policytrack/internal/session"
	"policytrack/internal/storage"
	"policytrack/internal/summarize"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// Content is the file behind a new version: either a reader to store now, or the id
// of an upload staged earlier by Stage.
type Content struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	StagingID   string
}

// CreateDocumentInput creates a document with its first published version.
type CreateDocumentInput struct {
	Name       string
	ShortCode  string
	UploadedBy string
	Notes      string
	Content    Content
}

// UploadVersionInput submits a new version of an existing document for review.
type UploadVersionInput struct {
	UploadedBy string
	Notes      string
	Content    Content
}

// IndexStatus reports the outcome of updating the retrieval index after publication.
type IndexStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	IndexIndexed = "indexed"
	IndexFailed  = "failed"
	IndexSkipped = "skipped"
)

// PublishResult is returned by operations that publish a version.
type PublishResult struct {
	Document *model.Document `json:"document"`
	Version  model.Version   `json:"version"`
	Index    IndexStatus     `json:"index"`
}

// CompareResult is the comparison between two versions of a document.
type CompareResult struct {
	DocumentID    string `json:"document_id"`
	FromVersionID string `json:"from_version_id"`
	ToVersionID   string `json:"to_version_id"`
	// Precomputed is true when the comparison stored at upload time was reused.
	Precomputed bool             `json:"precomputed"`
	Comparison  model.Comparison `json:"comparison"`
}

// DocumentService defines the use cases of the version lifecycle. It is the only
// component that mutates documents.
type DocumentService interface {
	// CreateDocument stores content and creates a document whose first version is published.
	CreateDocument(ctx context.Context, in CreateDocumentInput) (*PublishResult, error)

	// UploadVersion stores a new pending version with a precomputed comparison against
	// the current version. The current version is unchanged.
	UploadVersion(ctx context.Context, documentID string, in UploadVersionInput) (*model.Version, error)

	// Approve publishes a pending version and refreshes the retrieval index.
	Approve(ctx context.Context, documentID, versionID string) (*PublishResult, error)

	// Reject discards a pending version and its content.
	Reject(ctx context.Context, documentID, versionID string) error

	// Get returns a document with all versions.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Compare diffs two versions of the same document.
	Compare(ctx context.Context, documentID, fromID, toID string) (*CompareResult, error)

	// Match ranks existing documents as candidates for an upload.
	Match(ctx context.Context, in MatchInput) ([]model.MatchResult, error)

	// Stage stores an upload ahead of the create-or-upload decision and ranks candidates.
	Stage(ctx context.Context, in StageInput) (*StageResult, error)

	// SweepStaged deletes staged content that was never claimed and returns how many
	// objects were removed.
	SweepStaged(ctx context.Context) (int, error)
}

// Deps wires a DocumentService. Summarizer and Indexer may be nil.
type Deps struct {
	Repo           repository.DocumentRepository
	Store          storage.Storage
	Extractor      extract.Extractor
	Summarizer     summarize.Summarizer
	Indexer        search.Indexer
	Sessions       session.Store
	Diff           *diff.Engine
	Matcher        *match.Scorer
	Metrics        *metrics.Metrics
	Log            zerolog.Logger
	Clock          func() time.Time
	ExtractTimeout time.Duration
	StagingTTL     time.Duration
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo           repository.DocumentRepository
	store          storage.Storage
	extractor      extract.Extractor
	summarizer     summarize.Summarizer
	indexer        search.Indexer
	sessions       session.Store
	diff           *diff.Engine
	matcher        *match.Scorer
	metrics        *metrics.Metrics
	log            zerolog.Logger
	clock          func() time.Time
	extractTimeout time.Duration
	stagingTTL     time.Duration

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d Deps) DocumentService {
	s := &documentService{
		repo:           d.Repo,
		store:          d.Store,
		extractor:      d.Extractor,
		summarizer:     d.Summarizer,
		indexer:        d.Indexer,
		sessions:       d.Sessions,
		diff:           d.Diff,
		matcher:        d.Matcher,
		metrics:        d.Metrics,
		log:            d.Log,
		clock:          d.Clock,
		extractTimeout: d.ExtractTimeout,
		stagingTTL:     d.StagingTTL,
		locks:          make(map[string]*sync.Mutex),
	}
	if s.diff == nil {
		s.diff = diff.New(diff.DefaultOptions())
	}
	if s.matcher == nil {
		s.matcher = match.NewScorer(match.DefaultConfig())
	}
	if s.metrics == nil {
		s.metrics = metrics.New(prometheus.NewRegistry())
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.extractTimeout <= 0 {
		s.extractTimeout = 30 * time.Second
	}
	if s.stagingTTL <= 0 {
		s.stagingTTL = 30 * time.Minute
	}
	return s
}

// documentLock serializes lifecycle transitions of one document.
func (s *documentService) documentLock(documentID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[documentID]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[documentID] = lock
	return lock
}

func (s *documentService) now() time.Time {
	return s.clock().UTC()
}

func (s *documentService) CreateDocument(ctx context.Context, in CreateDocumentInput) (*PublishResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	docID := uuid.NewString()
	versionID := uuid.NewString()
	blob, err := s.putContent(ctx, docID, versionID, in.Content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := &model.Document{
		ID:               docID,
		Name:             name,
		ShortCode:        strings.TrimSpace(in.ShortCode),
		CreatedAt:        now,
		UpdatedAt:        now,
		CurrentVersionID: versionID,
	}
	v := model.Version{
		ID:          versionID,
		DocumentID:  docID,
		ContentRef:  blob.ref,
		Filename:    blob.filename,
		ContentType: blob.contentType,
		UploadedBy:  uploader(in.UploadedBy),
		Notes:       in.Notes,
		Size:        blob.size,
		Status:      model.StatusPublished,
		CreatedAt:   now,
	}

	if err := s.repo.CreateDocument(ctx, doc, &v); err != nil {
		return nil, s.rollback(ctx, blob, err)
	}
	s.consumeStaged(ctx, blob)
	s.metrics.DocumentsCreated.Inc()

	doc.Versions = []model.Version{v}
	idx := s.index(ctx, doc, v, blob.text)
	s.log.Info().
		Str("document_id", docID).
		Str("version_id", versionID).
		Str("index", idx.Status).
		Msg("document created")

	return &PublishResult{Document: doc, Version: v, Index: idx}, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.find(ctx, id)
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// index replaces the document's indexed content with the given version. Failures are
// reported in the returned status and never undo the publication.
func (s *documentService) index(ctx context.Context, doc *model.Document, v model.Version, text string) IndexStatus {
	if s.indexer == nil {
		return IndexStatus{Status: IndexSkipped}
	}

	fail := func(err error) IndexStatus {
		s.metrics.IndexFailures.Inc()
		s.log.Warn().Err(err).
			Str("document_id", doc.ID).
			Str("version_id", v.ID).
			Msg("index update failed")
		return IndexStatus{Status: IndexFailed, Error: err.Error()}
	}

	if text == "" {
		var err error
		if text, err = s.extractText(ctx, v.ContentRef, v.ContentType); err != nil {
			return fail(fmt.Errorf("extract text: %w", err))
		}
	}

	err := s.indexer.Replace(ctx, search.Record{
		ID:           doc.ID,
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		ShortTitle:   shortTitle(doc),
		UploadedBy:   v.UploadedBy,
		VersionID:    v.ID,
		Content:      text,
	})
	if err != nil {
		return fail(err)
	}
	return IndexStatus{Status: IndexIndexed}
}

func shortTitle(doc *model.Document) string {
	if doc.ShortCode != "" {
		return doc.ShortCode
	}
	r := []rune(doc.Name)
	if len(r) > 40 {
		return strings.TrimSpace(string(r[:40]))
	}
	return doc.Name
}

func uploader(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "anonymous"
}
