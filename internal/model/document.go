package model

import "time"

type IngestionStatus string

const (
	IngestionStatusPending    IngestionStatus = "PENDING"
	IngestionStatusIngestedOK IngestionStatus = "INGESTED_OK"
	IngestionStatusFailed     IngestionStatus = "FAILED"
)

// FileRef points at one uploaded blob. Locator is a directly fetchable URL
// returned by the blob store.
type FileRef struct {
	Name    string `json:"name" db:"name"`
	Locator string `json:"locator" db:"locator"`
}

// StoredDocument is one registry record: the template and results files
// uploaded for a (session, term, class) triple. ID is deterministic over
// that triple, so re-uploading the same triple overwrites the record.
type StoredDocument struct {
	ID              string          `json:"id" db:"id"`
	Session         string          `json:"session" db:"session"`
	Term            string          `json:"term" db:"term"`
	ClassID         string          `json:"class_id" db:"class_id"`
	ClassName       string          `json:"class_name" db:"class_name"`
	TemplateFile    FileRef         `json:"template_file"`
	ResultsFile     FileRef         `json:"results_file"`
	IngestionStatus IngestionStatus `json:"ingestion_status" db:"ingestion_status"`
	ErrorMessage    *string         `json:"error_message,omitempty" db:"error_message"`
	UploadedAt      time.Time       `json:"uploaded_at" db:"uploaded_at"`
}
