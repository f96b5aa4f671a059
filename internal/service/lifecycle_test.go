package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policytrack/internal/extract"
	"policytrack/internal/logger"
	"policytrack/internal/metrics"
	"policytrack/internal/model"
	"policytrack/internal/period"
	"policytrack/internal/repository/memory"
	"policytrack/internal/session"
	"policytrack/internal/storage"
)

const (
	travelV1 = `Travel Policy 2024
Employees book all business travel through the company portal.
Receipts are submitted within thirty days of returning.`
	travelV2 = `Travel Policy 2024
Employees book all business travel through the company portal.
Receipts are submitted within thirty days of returning.
International trips require written approval from a director before booking.`
)

type lifecycle struct {
	docs     DocumentService
	digests  DigestService
	store    *storage.Memory
	sessions *session.MemoryStore
	metrics  *metrics.Metrics
	now      time.Time
}

func newLifecycle(t *testing.T) *lifecycle {
	t.Helper()
	l := &lifecycle{
		store:    storage.NewMemory(),
		sessions: session.NewMemoryStore(),
		metrics:  metrics.New(prometheus.NewRegistry()),
		now:      fixedNow,
	}
	repo := memory.NewDocumentMemory()
	clock := func() time.Time { return l.now }
	l.store.SetClock(clock)
	l.docs = NewDocumentService(Deps{
		Repo:      repo,
		Store:     l.store,
		Extractor: extract.NewStorageExtractor(l.store, extract.Options{}),
		Sessions:  l.sessions,
		Metrics:   l.metrics,
		Log:       logger.Nop(),
		Clock:     clock,
	})
	l.digests = NewDigestService(repo, period.NewCalculator(12), clock, l.metrics, logger.Nop())
	return l
}

func textContent(name, body string) Content {
	return Content{Reader: strings.NewReader(body), Filename: name, ContentType: "text/plain", Size: int64(len(body))}
}

func TestLifecycle_CreateUploadApproveDigest(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{
		Name:       "Travel Policy",
		UploadedBy: "rina",
		Content:    textContent("travel.txt", travelV1),
	})
	require.NoError(t, err)
	docID := created.Document.ID
	v1 := created.Version.ID
	assert.Equal(t, IndexSkipped, created.Index.Status)

	l.now = l.now.Add(24 * time.Hour)
	v2, err := l.docs.UploadVersion(ctx, docID, UploadVersionInput{
		UploadedBy: "budi",
		Notes:      "international travel approval",
		Content:    textContent("travel-2024.txt", travelV2),
	})
	require.NoError(t, err)
	require.NotNil(t, v2.Comparison)
	assert.False(t, v2.Comparison.Fallback)
	assert.Equal(t, v1, v2.Comparison.BaseVersionID)
	require.Len(t, v2.Comparison.Changes, 1)
	assert.Equal(t, model.ChangeAdded, v2.Comparison.Changes[0].Type)
	assert.Equal(t, "1 changes detected in the document.", v2.Comparison.Summary)

	doc, err := l.docs.Get(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, v1, doc.CurrentVersionID, "upload must not change the current version")

	// a second upload while one is pending is refused before anything is stored
	_, err = l.docs.UploadVersion(ctx, docID, UploadVersionInput{Content: textContent("again.txt", travelV2)})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 2, l.store.Len())

	l.now = l.now.Add(time.Hour)
	res, err := l.docs.Approve(ctx, docID, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, res.Document.CurrentVersionID)

	_, err = l.docs.Approve(ctx, docID, v2.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	cmp, err := l.docs.Compare(ctx, docID, v1, v2.ID)
	require.NoError(t, err)
	assert.True(t, cmp.Precomputed)

	d, err := l.digests.Build(ctx, model.PeriodWeek, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, d.NewPolicies)
	assert.Equal(t, 2, d.TotalChanges)
	require.Len(t, d.Documents, 1)
	assert.True(t, d.Documents[0].IsNew)
	assert.Equal(t, v2.ID, d.Documents[0].Changes[0].VersionID)
	assert.Equal(t, model.StatusPublished, d.Documents[0].Changes[0].Status)
	assert.Equal(t, "1 changes detected in the document.", d.Documents[0].Changes[0].Summary)

	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.VersionsApproved))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.DigestsBuilt.WithLabelValues("week")))
}

func TestLifecycle_RejectRemovesContent(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Travel Policy", Content: textContent("travel.txt", travelV1)})
	require.NoError(t, err)
	v2, err := l.docs.UploadVersion(ctx, created.Document.ID, UploadVersionInput{Content: textContent("travel.txt", travelV2)})
	require.NoError(t, err)
	require.Equal(t, 2, l.store.Len())

	require.NoError(t, l.docs.Reject(ctx, created.Document.ID, v2.ID))
	assert.Equal(t, 1, l.store.Len())

	doc, err := l.docs.Get(ctx, created.Document.ID)
	require.NoError(t, err)
	assert.Len(t, doc.Versions, 1)
	assert.Empty(t, doc.PendingVersionID)

	err = l.docs.Reject(ctx, created.Document.ID, created.Version.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLifecycle_UnreadableContentFallsBack(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Travel Policy", Content: textContent("travel.txt", travelV1)})
	require.NoError(t, err)

	// no Tika configured, so a PDF cannot be read
	v2, err := l.docs.UploadVersion(ctx, created.Document.ID, UploadVersionInput{
		Notes: "scanned copy of the signed policy",
		Content: Content{
			Reader:      strings.NewReader("%PDF-1.7"),
			Filename:    "travel.pdf",
			ContentType: "application/pdf",
			Size:        8,
		},
	})
	require.NoError(t, err)
	assert.True(t, v2.Comparison.Fallback)
	assert.Empty(t, v2.Comparison.Changes)
	assert.Equal(t, "scanned copy of the signed policy", v2.Comparison.Summary)
	assert.Contains(t, v2.Comparison.FallbackReason, "new text unavailable")
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.ComparisonFallbacks.WithLabelValues("new")))
}

func TestLifecycle_StageThenUpload(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Travel Policy 2024", Content: textContent("travel.txt", travelV1)})
	require.NoError(t, err)

	staged, err := l.docs.Stage(ctx, StageInput{
		Reader:      strings.NewReader(travelV2),
		Filename:    "20240110_travel-policy-2024.txt",
		ContentType: "text/plain",
		Size:        int64(len(travelV2)),
	})
	require.NoError(t, err)
	assert.True(t, staged.TextExtracted)
	assert.Equal(t, fixedNow.Add(30*time.Minute), staged.ExpiresAt)
	require.NotEmpty(t, staged.Candidates)
	assert.Equal(t, created.Document.ID, staged.Candidates[0].Document.ID)

	v2, err := l.docs.UploadVersion(ctx, created.Document.ID, UploadVersionInput{Content: Content{StagingID: staged.StagingID}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(v2.ContentRef, "documents/"+created.Document.ID+"/"))
	assert.False(t, v2.Comparison.Fallback)

	// the staged upload is consumed
	_, err = l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Other", Content: Content{StagingID: staged.StagingID}})
	assert.ErrorIs(t, err, ErrStagingExpired)
	left, err := l.store.List(ctx, storage.StagingPrefix)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestLifecycle_StagedUploadClaimedOnce(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	staged, err := l.docs.Stage(ctx, StageInput{
		Reader:      strings.NewReader(travelV1),
		Filename:    "travel.txt",
		ContentType: "text/plain",
		Size:        int64(len(travelV1)),
	})
	require.NoError(t, err)

	const claimants = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []*PublishResult
		errs    []error
	)
	for i := range claimants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.docs.CreateDocument(ctx, CreateDocumentInput{
				Name:    fmt.Sprintf("Travel Policy %d", i),
				Content: Content{StagingID: staged.StagingID},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			created = append(created, res)
		}()
	}
	wg.Wait()

	require.Len(t, created, 1)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrStagingExpired)
	}
	// only the winner's copy remains
	assert.Equal(t, 1, l.store.Len())
	_, _, err = l.store.Get(ctx, created[0].Version.ContentRef)
	assert.NoError(t, err)
}

func TestLifecycle_SweepStaged(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	stage := func(name string) *StageResult {
		t.Helper()
		res, err := l.docs.Stage(ctx, StageInput{Reader: strings.NewReader(travelV1), Filename: name, ContentType: "text/plain", Size: int64(len(travelV1))})
		require.NoError(t, err)
		return res
	}
	abandoned := stage("abandoned.txt")
	kept := stage("kept.txt")

	// nothing is old enough yet
	n, err := l.docs.SweepStaged(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the entry of the abandoned upload expires; the other is still claimable
	_, err = l.sessions.TakeStaged(ctx, abandoned.StagingID)
	require.NoError(t, err)
	l.now = l.now.Add(2 * time.Hour)

	n, err = l.docs.SweepStaged(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.StagedSwept))

	left, err := l.store.List(ctx, storage.StagingPrefix)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, kept.StagingID, storage.StagingIDFromKey(left[0].Key))
}

func TestRunStagingSweep(t *testing.T) {
	l := newLifecycle(t)
	_, err := l.store.Put(context.Background(), storage.StagingKey("lost", "lost.txt"), strings.NewReader("x"), storage.PutObjectOptions{Size: 1})
	require.NoError(t, err)
	l.now = l.now.Add(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunStagingSweep(ctx, l.docs, time.Millisecond, logger.Nop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestLifecycle_ConcurrentApproveReject(t *testing.T) {
	ctx := context.Background()

	for round := range 20 {
		t.Run(fmt.Sprintf("round %d", round), func(t *testing.T) {
			l := newLifecycle(t)
			created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Travel Policy", Content: textContent("travel.txt", travelV1)})
			require.NoError(t, err)
			docID, v1 := created.Document.ID, created.Version.ID
			v2, err := l.docs.UploadVersion(ctx, docID, UploadVersionInput{Content: textContent("travel.txt", travelV2)})
			require.NoError(t, err)

			const workers = 8
			var (
				wg       sync.WaitGroup
				approved atomic.Int32
				rejected atomic.Int32
				errs     = make(chan error, workers)
			)
			for i := range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if i%2 == 0 {
						if _, err := l.docs.Approve(ctx, docID, v2.ID); err != nil {
							errs <- err
							return
						}
						approved.Add(1)
						return
					}
					if err := l.docs.Reject(ctx, docID, v2.ID); err != nil {
						errs <- err
						return
					}
					rejected.Add(1)
				}()
			}
			wg.Wait()
			close(errs)

			assert.Equal(t, int32(1), approved.Load()+rejected.Load(), "exactly one decision wins")
			for err := range errs {
				assert.True(t, errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotFound), "unexpected error: %v", err)
			}

			doc, err := l.docs.Get(ctx, docID)
			require.NoError(t, err)
			assert.Empty(t, doc.PendingVersionID)
			current, ok := doc.Current()
			require.True(t, ok)
			assert.Equal(t, model.StatusPublished, current.Status)
			if approved.Load() == 1 {
				assert.Equal(t, v2.ID, current.ID)
				assert.Equal(t, 2, l.store.Len())
			} else {
				assert.Equal(t, v1, current.ID)
				assert.Equal(t, 1, l.store.Len())
			}
		})
	}
}

func TestLifecycle_ConcurrentUploads(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)
	created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Travel Policy", Content: textContent("travel.txt", travelV1)})
	require.NoError(t, err)
	docID := created.Document.ID

	const uploaders = 8
	var (
		wg       sync.WaitGroup
		uploaded atomic.Int32
		errs     = make(chan error, uploaders)
	)
	for range uploaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.docs.UploadVersion(ctx, docID, UploadVersionInput{Content: textContent("travel.txt", travelV2)}); err != nil {
				errs <- err
				return
			}
			uploaded.Add(1)
		}()
	}
	wg.Wait()
	close(errs)

	assert.Equal(t, int32(1), uploaded.Load())
	for err := range errs {
		assert.ErrorIs(t, err, ErrInvalidState)
	}
	doc, err := l.docs.Get(ctx, docID)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.PendingVersionID)
	assert.Equal(t, created.Version.ID, doc.CurrentVersionID)
	assert.Equal(t, 2, l.store.Len(), "losing uploads leave no content behind")
}

func TestLifecycle_DigestOfLaterPeriod(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	// created in week 2, updated in week 7 (Wednesday 14 February 2024)
	created, err := l.docs.CreateDocument(ctx, CreateDocumentInput{Name: "Travel Policy", Content: textContent("travel.txt", travelV1)})
	require.NoError(t, err)
	docID := created.Document.ID

	l.now = time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC)
	v2, err := l.docs.UploadVersion(ctx, docID, UploadVersionInput{Content: textContent("travel.txt", travelV2)})
	require.NoError(t, err)
	_, err = l.docs.Approve(ctx, docID, v2.ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		typ  model.PeriodType
		num  int
	}{
		{name: "week", typ: model.PeriodWeek, num: 7},
		{name: "month", typ: model.PeriodMonth, num: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := l.digests.Build(ctx, tt.typ, 2024, tt.num)
			require.NoError(t, err)
			assert.Zero(t, d.NewPolicies)
			assert.Equal(t, 1, d.UpdatedPolicies)
			assert.Equal(t, 1, d.TotalChanges)
			require.Len(t, d.Documents, 1)
			assert.False(t, d.Documents[0].IsNew)
			require.Len(t, d.Documents[0].Changes, 1)
			assert.Equal(t, v2.ID, d.Documents[0].Changes[0].VersionID)
		})
	}

	// the creation week holds only the new document
	d, err := l.digests.Build(ctx, model.PeriodWeek, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, d.NewPolicies)
	assert.Equal(t, 1, d.TotalChanges)
	require.Len(t, d.Documents, 1)
	assert.True(t, d.Documents[0].IsNew)
}
