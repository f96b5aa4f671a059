package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policytrack/internal/model"
	"policytrack/internal/repository"
)

var documentCols = []string{"id", "name", "short_code", "current_version_id", "created_at", "updated_at"}

var versionCols = []string{"id", "document_id", "content_ref", "filename", "content_type", "uploaded_by", "notes", "size", "status", "comparison", "created_at"}

func newMock(t *testing.T) (*DocumentPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDocumentPostgres(db), mock
}

func TestDocumentPostgres_CreateDocument(t *testing.T) {
	now := time.Now().UTC()
	doc := &model.Document{
		ID:               "doc-1",
		Name:             "Leave Policy",
		ShortCode:        "36-3003",
		CurrentVersionID: "v1",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	first := &model.Version{
		ID:          "v1",
		DocumentID:  "doc-1",
		ContentRef:  "documents/doc-1/v1.txt",
		Filename:    "leave.txt",
		ContentType: "text/plain",
		UploadedBy:  "ana",
		Size:        42,
		Status:      model.StatusPublished,
		CreatedAt:   now,
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").
			WithArgs("doc-1", "Leave Policy", "36-3003", "v1", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO document_versions").
			WithArgs("v1", "doc-1", first.ContentRef, "leave.txt", "text/plain", "ana", "", int64(42), "published", sqlmock.AnyArg(), now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.CreateDocument(context.Background(), doc, first)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version insert fails rolls back", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO document_versions").WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := repo.CreateDocument(context.Background(), doc, first)

		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found with versions", func(t *testing.T) {
		repo, mock := newMock(t)
		cmp, err := json.Marshal(model.Comparison{BaseVersionID: "v1", Summary: "2 changes detected in the document."})
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(documentCols).AddRow("doc-1", "Leave", "", "v1", now, now))
		mock.ExpectQuery("SELECT (.+) FROM document_versions WHERE document_id = ?").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(versionCols).
				AddRow("v1", "doc-1", "ref1", "a.txt", "text/plain", "ana", "", int64(3), "published", nil, now).
				AddRow("v2", "doc-1", "ref2", "b.txt", "text/plain", "ben", "fix", int64(4), "pending", cmp, now.Add(time.Hour)))

		doc, err := repo.FindByID(context.Background(), "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "v1", doc.CurrentVersionID)
		assert.Equal(t, "v2", doc.PendingVersionID)
		require.Len(t, doc.Versions, 2)
		assert.Nil(t, doc.Versions[0].Comparison)
		require.NotNil(t, doc.Versions[1].Comparison)
		assert.Equal(t, "v1", doc.Versions[1].Comparison.BaseVersionID)
		assert.Equal(t, model.StatusPending, doc.Versions[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(context.Background(), "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT(.+) FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM documents d ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(append(documentCols, "pending_version_id")).
			AddRow("doc-2", "Travel", "", "v3", now, now, "v4").
			AddRow("doc-1", "Leave", "36-3003", "v1", now, now, nil))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "v4", res.Items[0].PendingVersionID)
	assert.Empty(t, res.Items[1].PendingVersionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListWithVersions(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY name").
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow("doc-1", "Leave", "", "v1", now, now).
			AddRow("doc-2", "Travel", "", "v2", now, now))
	mock.ExpectQuery("SELECT (.+) FROM document_versions ORDER BY created_at").
		WillReturnRows(sqlmock.NewRows(versionCols).
			AddRow("v1", "doc-1", "r1", "a.txt", "text/plain", "ana", "", int64(1), "published", nil, now).
			AddRow("v2", "doc-2", "r2", "b.txt", "text/plain", "ana", "", int64(1), "published", nil, now).
			AddRow("v3", "doc-1", "r3", "c.txt", "text/plain", "ben", "", int64(1), "pending", nil, now).
			AddRow("orphan", "gone", "r4", "d.txt", "text/plain", "ben", "", int64(1), "pending", nil, now))

	docs, err := repo.ListWithVersions(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Len(t, docs[0].Versions, 2)
	assert.Equal(t, "v3", docs[0].PendingVersionID)
	assert.Len(t, docs[1].Versions, 1)
	assert.Empty(t, docs[1].PendingVersionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_CreateVersion(t *testing.T) {
	v := &model.Version{
		ID:         "v2",
		DocumentID: "doc-1",
		Status:     model.StatusPending,
		Comparison: &model.Comparison{BaseVersionID: "v1"},
		CreatedAt:  time.Now().UTC(),
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("INSERT INTO document_versions").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.CreateVersion(context.Background(), v))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second pending version", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("INSERT INTO document_versions").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "document_versions_one_pending_idx"})

		err := repo.CreateVersion(context.Background(), v)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other unique violation is not a pending conflict", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("INSERT INTO document_versions").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "document_versions_content_ref_key"})

		err := repo.CreateVersion(context.Background(), v)

		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrConflict)
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "document_versions_content_ref_key", pgErr.ConstraintName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_PublishVersion(t *testing.T) {
	at := time.Now().UTC()
	params := repository.PublishParams{DocumentID: "doc-1", VersionID: "v2", PreviousVersionID: "v1", At: at}

	tests := []struct {
		name       string
		setupMocks func(mock sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE document_versions SET status").
					WithArgs("v2", "doc-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("UPDATE documents SET current_version_id").
					WithArgs("v2", at, "doc-1", "v1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "version not pending",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE document_versions SET status").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: sql.ErrNoRows,
		},
		{
			name: "current version moved",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE document_versions SET status").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("UPDATE documents SET current_version_id").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: repository.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			tt.setupMocks(mock)

			err := repo.PublishVersion(context.Background(), params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDocumentPostgres_DeleteVersion(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("DELETE FROM document_versions").
			WithArgs("v2", "doc-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteVersion(context.Background(), "doc-1", "v2"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing pending", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec("DELETE FROM document_versions").
			WithArgs("v1", "doc-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteVersion(context.Background(), "doc-1", "v1"), sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
