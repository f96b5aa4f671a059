package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"policytrack/internal/model"
	"policytrack/internal/repository"
)

const (
	uniqueViolation = "23505"
	onePendingIndex = "document_versions_one_pending_idx"
)

const versionColumns = `id, document_id, content_ref, filename, content_type, uploaded_by, notes, size, status, comparison, created_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// CreateDocument inserts the document row and its first version in one transaction.
func (r *DocumentPostgres) CreateDocument(ctx context.Context, doc *model.Document, first *model.Version) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qDoc = `
		INSERT INTO documents (id, name, short_code, current_version_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err = tx.ExecContext(ctx, qDoc,
		doc.ID,
		doc.Name,
		doc.ShortCode,
		nullString(doc.CurrentVersionID),
		doc.CreatedAt,
		doc.UpdatedAt,
	); err != nil {
		return err
	}
	if err = insertVersion(ctx, tx, first); err != nil {
		return err
	}
	return tx.Commit()
}

// FindByID fetches a single document and its versions in upload order.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, name, short_code, current_version_id, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	const qVersions = `SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, qVersions, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		d.Versions = append(d.Versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	setPending(&d)
	return &d, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT d.id, d.name, d.short_code, d.current_version_id, d.created_at, d.updated_at,
			(SELECT v.id FROM document_versions v WHERE v.document_id = d.id AND v.status = 'pending' LIMIT 1)
		FROM documents d
		ORDER BY d.updated_at DESC, d.id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var (
			d       model.Document
			current sql.NullString
			pending sql.NullString
		)
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.ShortCode,
			&current,
			&d.CreatedAt,
			&d.UpdatedAt,
			&pending,
		); err != nil {
			return nil, err
		}
		d.CurrentVersionID = current.String
		d.PendingVersionID = pending.String
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// ListWithVersions loads every document and groups all versions under their owner.
func (r *DocumentPostgres) ListWithVersions(ctx context.Context) ([]model.Document, error) {
	const qDocs = `
		SELECT id, name, short_code, current_version_id, created_at, updated_at
		FROM documents
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, qDocs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	index := make(map[string]int)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		index[d.ID] = len(docs)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qVersions = `SELECT ` + versionColumns + `
		FROM document_versions
		ORDER BY created_at ASC, id ASC
	`
	vrows, err := r.db.QueryContext(ctx, qVersions)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()

	for vrows.Next() {
		v, err := scanVersion(vrows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[v.DocumentID]; ok {
			docs[i].Versions = append(docs[i].Versions, v)
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}
	for i := range docs {
		setPending(&docs[i])
	}
	return docs, nil
}

// CreateVersion inserts a pending version. The partial unique index on pending
// versions turns a second pending upload into repository.ErrConflict.
func (r *DocumentPostgres) CreateVersion(ctx context.Context, v *model.Version) error {
	err := insertVersion(ctx, r.db, v)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == onePendingIndex {
		return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
	}
	if err != nil {
		return fmt.Errorf("insert version %s: %w", v.ID, err)
	}
	return nil
}

// PublishVersion flips the version to published and swaps current_version_id only when
// it still matches the value the caller read.
func (r *DocumentPostgres) PublishVersion(ctx context.Context, p repository.PublishParams) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qVersion = `
		UPDATE document_versions SET status = 'published'
		WHERE id = $1 AND document_id = $2 AND status = 'pending'
	`
	if err = execOne(ctx, tx, sql.ErrNoRows, qVersion, p.VersionID, p.DocumentID); err != nil {
		return err
	}

	const qDoc = `
		UPDATE documents SET current_version_id = $1, updated_at = $2
		WHERE id = $3 AND current_version_id IS NOT DISTINCT FROM $4
	`
	if err = execOne(ctx, tx, repository.ErrConflict, qDoc,
		p.VersionID, p.At, p.DocumentID, nullString(p.PreviousVersionID)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteVersion removes a pending version row.
func (r *DocumentPostgres) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	const q = `DELETE FROM document_versions WHERE id = $1 AND document_id = $2 AND status = 'pending'`
	return execOne(ctx, r.db, sql.ErrNoRows, q, versionID, documentID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// execOne runs a statement that must touch exactly one row, returning none otherwise.
func execOne(ctx context.Context, db execer, none error, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}

func insertVersion(ctx context.Context, db execer, v *model.Version) error {
	var comparison []byte
	if v.Comparison != nil {
		b, err := json.Marshal(v.Comparison)
		if err != nil {
			return fmt.Errorf("encode comparison: %w", err)
		}
		comparison = b
	}

	const q = `INSERT INTO document_versions (` + versionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.ExecContext(ctx, q,
		v.ID,
		v.DocumentID,
		v.ContentRef,
		v.Filename,
		v.ContentType,
		v.UploadedBy,
		v.Notes,
		v.Size,
		string(v.Status),
		comparison,
		v.CreatedAt,
	)
	return err
}

func scanDocument(row scanner) (model.Document, error) {
	var (
		d       model.Document
		current sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.ShortCode,
		&current,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return model.Document{}, err
	}
	d.CurrentVersionID = current.String
	return d, nil
}

func scanVersion(row scanner) (model.Version, error) {
	var (
		v          model.Version
		status     string
		comparison []byte
	)
	if err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.ContentRef,
		&v.Filename,
		&v.ContentType,
		&v.UploadedBy,
		&v.Notes,
		&v.Size,
		&status,
		&comparison,
		&v.CreatedAt,
	); err != nil {
		return model.Version{}, err
	}
	v.Status = model.VersionStatus(status)
	if len(comparison) > 0 {
		var c model.Comparison
		if err := json.Unmarshal(comparison, &c); err != nil {
			return model.Version{}, fmt.Errorf("decode comparison of version %s: %w", v.ID, err)
		}
		v.Comparison = &c
	}
	return v, nil
}

func setPending(d *model.Document) {
	for _, v := range d.Versions {
		if v.IsPending() {
			d.PendingVersionID = v.ID
			return
		}
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
