package model

import "time"

// IngestionJob tells the ingestion worker to turn one uploaded scoresheet
// into score records using the mapping committed at upload time.
type IngestionJob struct {
	DocumentID string            `json:"document_id"`
	ResultsKey string            `json:"results_key"`
	Session    string            `json:"session"`
	Term       string            `json:"term"`
	ClassID    string            `json:"class_id"`
	SheetName  string            `json:"sheet_name"`
	Mapping    map[string]string `json:"mapping"`
}

// InspectResponse is the upload preview: what the mapping pipeline extracted
// from the template and scoresheet before anything is persisted.
type InspectResponse struct {
	Placeholders  []string          `json:"placeholders"`
	SheetNames    []string          `json:"sheet_names"`
	SelectedSheet string            `json:"selected_sheet"`
	Headers       []string          `json:"headers"`
	AutoMapping   map[string]string `json:"auto_mapping"`
	Unmapped      []string          `json:"unmapped,omitempty"`
}

// UploadResponse reports the committed document plus any non-blocking
// mapping warnings.
type UploadResponse struct {
	Document *StoredDocument `json:"document"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ProgressResponse is the coarse stage view of one upload/ingestion.
type ProgressResponse struct {
	DocumentID string            `json:"document_id"`
	Stages     map[string]string `json:"stages"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Requester identifies the acting user for visibility filtering. It is
// always passed explicitly; nothing reads ambient session state.
type Requester struct {
	UserID          string   `json:"user_id"`
	Role            Role     `json:"role"`
	Section         string   `json:"section,omitempty"`
	ClassID         string   `json:"class_id,omitempty"`
	AssignedClasses []string `json:"assigned_classes,omitempty"`
}
