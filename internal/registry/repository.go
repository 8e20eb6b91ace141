package registry

import (
	"context"
	"database/sql"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// Repository persists document metadata records. Saving an id that already
// exists replaces the record: re-uploading for the same (session, term,
// class) overwrites.
type Repository interface {
	SaveDocument(ctx context.Context, doc *model.StoredDocument) error
	GetDocument(ctx context.Context, id string) (*model.StoredDocument, error)
	ListDocuments(ctx context.Context) ([]model.StoredDocument, error)
	DeleteDocument(ctx context.Context, id string) error
	UpdateIngestionStatus(ctx context.Context, id string, status model.IngestionStatus, errorMessage *string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const documentColumns = `id, session, term, class_id, class_name,
	template_name, template_locator, results_name, results_locator,
	ingestion_status, error_message, uploaded_at`

func (r *repository) SaveDocument(ctx context.Context, doc *model.StoredDocument) error {
	query := `INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			class_name = VALUES(class_name),
			template_name = VALUES(template_name),
			template_locator = VALUES(template_locator),
			results_name = VALUES(results_name),
			results_locator = VALUES(results_locator),
			ingestion_status = VALUES(ingestion_status),
			error_message = VALUES(error_message),
			uploaded_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Session, doc.Term, doc.ClassID, doc.ClassName,
		doc.TemplateFile.Name, doc.TemplateFile.Locator,
		doc.ResultsFile.Name, doc.ResultsFile.Locator,
		doc.IngestionStatus, doc.ErrorMessage)
	return err
}

func scanDocument(row interface{ Scan(...interface{}) error }) (*model.StoredDocument, error) {
	var doc model.StoredDocument
	err := row.Scan(
		&doc.ID, &doc.Session, &doc.Term, &doc.ClassID, &doc.ClassName,
		&doc.TemplateFile.Name, &doc.TemplateFile.Locator,
		&doc.ResultsFile.Name, &doc.ResultsFile.Locator,
		&doc.IngestionStatus, &doc.ErrorMessage, &doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) GetDocument(ctx context.Context, id string) (*model.StoredDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrDocumentNotFound
	}
	return doc, err
}

func (r *repository) ListDocuments(ctx context.Context) ([]model.StoredDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.StoredDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *repository) DeleteDocument(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

func (r *repository) UpdateIngestionStatus(ctx context.Context, id string, status model.IngestionStatus, errorMessage *string) error {
	query := `UPDATE documents SET ingestion_status = ?, error_message = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, id)
	return err
}
