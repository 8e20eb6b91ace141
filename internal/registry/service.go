package registry

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/asaniustaz/Campusconnect-sub000/internal/logger"
	"github.com/asaniustaz/Campusconnect-sub000/internal/mapping"
	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/internal/progress"
	"github.com/asaniustaz/Campusconnect-sub000/internal/sheet"
	"github.com/asaniustaz/Campusconnect-sub000/internal/storage"
)

// DocumentID derives the deterministic registry key for a (session, term,
// class) triple, so repeated uploads of the same triple land on one record.
func DocumentID(session, term, classID string) string {
	sum := sha1.Sum([]byte(session + "|" + term + "|" + classID))
	return hex.EncodeToString(sum[:])
}

// TemplateKey and ResultsKey are the blob-store path convention:
// documents/{documentId}/{template|results}-{originalFileName}.
func TemplateKey(documentID, filename string) string {
	return "documents/" + documentID + "/template-" + filename
}

func ResultsKey(documentID, filename string) string {
	return "documents/" + documentID + "/results-" + filename
}

// ClassDirectory is the slice of the directory store the registry needs:
// class names for metadata and the class list for section visibility.
type ClassDirectory interface {
	GetClass(ctx context.Context, id string) (*model.SchoolClass, error)
	ListClasses(ctx context.Context) ([]model.SchoolClass, error)
}

// JobEnqueuer hands the committed scoresheet to the ingestion pipeline.
type JobEnqueuer interface {
	EnqueueIngestionJob(ctx context.Context, job model.IngestionJob) error
}

// ProgressRecorder records coarse stage transitions for UI polling.
// Recording failures never fail the upload itself.
type ProgressRecorder interface {
	Set(ctx context.Context, documentID string, stage progress.Stage, status progress.Status) error
}

type Service struct {
	repo     Repository
	dir      ClassDirectory
	storage  storage.Storage
	producer JobEnqueuer
	tracker  ProgressRecorder
	log      zerolog.Logger
}

func NewService(
	repo Repository,
	dir ClassDirectory,
	store storage.Storage,
	producer JobEnqueuer,
	tracker ProgressRecorder,
) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		storage:  store,
		producer: producer,
		tracker:  tracker,
		log:      logger.Get(),
	}
}

// UploadInput is one upload transaction: both files plus the actor's sheet
// selection and manual mapping overrides.
type UploadInput struct {
	Session      string
	Term         string
	ClassID      string
	TemplateName string
	TemplateData []byte
	ResultsName  string
	ResultsData  []byte
	SheetName    string            // empty selects the first sheet
	Overrides    map[string]string // manual placeholder-to-header overrides
}

// Inspect runs the scan half of the pipeline without persisting anything:
// placeholders, sheets, headers and the auto-derived mapping, for the actor
// to review before committing.
func (s *Service) Inspect(ctx context.Context, in UploadInput) (*model.InspectResponse, error) {
	session, err := s.buildMappingSession(in)
	if err != nil {
		return nil, err
	}

	return &model.InspectResponse{
		Placeholders:  session.Placeholders(),
		SheetNames:    session.SheetNames(),
		SelectedSheet: session.SelectedSheet(),
		Headers:       session.Headers(),
		AutoMapping:   session.Mapping(),
		Unmapped:      session.UnmappedFields(),
	}, nil
}

func (s *Service) buildMappingSession(in UploadInput) (*mapping.Session, error) {
	text, err := s.scanTemplate(in)
	if err != nil {
		return nil, err
	}
	return s.scanScoresheet(text, in)
}

func (s *Service) scanTemplate(in UploadInput) (string, error) {
	text, err := sheet.ExtractTemplateText(in.TemplateName, in.TemplateData)
	if err != nil {
		return "", fmt.Errorf("template scan failed: %w", err)
	}
	return text, nil
}

func (s *Service) scanScoresheet(text string, in UploadInput) (*mapping.Session, error) {
	wb, err := sheet.Open(in.ResultsName, in.ResultsData)
	if err != nil {
		return nil, fmt.Errorf("scoresheet scan failed: %w", err)
	}

	session, err := mapping.NewSession(text, wb)
	if err != nil {
		return nil, err
	}
	if in.SheetName != "" {
		if err := session.SelectSheet(in.SheetName); err != nil {
			return nil, err
		}
	}
	for field, header := range in.Overrides {
		session.SetMapping(field, header)
	}
	return session, nil
}

// Upload runs the full saga: scan template, scan scoresheet, upload both
// blobs, commit metadata, enqueue ingestion. Every completed blob upload
// pushes a compensating delete that runs, in reverse order, if a later step
// fails, so a failed upload does not strand blobs. Overwriting an existing
// (session, term, class) record does not touch the previous record's blobs.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*model.StoredDocument, []string, error) {
	docID := DocumentID(in.Session, in.Term, in.ClassID)
	log := s.log.With().Str("document_id", docID).Str("class_id", in.ClassID).Logger()

	class, err := s.dir.GetClass(ctx, in.ClassID)
	if err != nil {
		return nil, nil, err
	}

	s.record(ctx, docID, progress.StageScanTemplate, progress.StatusRunning)
	s.record(ctx, docID, progress.StageScanScoresheet, progress.StatusPending)
	text, err := s.scanTemplate(in)
	if err != nil {
		s.record(ctx, docID, progress.StageScanTemplate, progress.StatusFailed)
		return nil, nil, err
	}
	s.record(ctx, docID, progress.StageScanTemplate, progress.StatusDone)

	s.record(ctx, docID, progress.StageScanScoresheet, progress.StatusRunning)
	session, err := s.scanScoresheet(text, in)
	if err != nil {
		s.record(ctx, docID, progress.StageScanScoresheet, progress.StatusFailed)
		return nil, nil, err
	}
	warnings, err := session.Validate()
	if err != nil {
		s.record(ctx, docID, progress.StageScanScoresheet, progress.StatusFailed)
		return nil, nil, err
	}
	s.record(ctx, docID, progress.StageScanScoresheet, progress.StatusDone)

	// Compensating actions for completed steps, run in reverse on failure.
	var undo []func()
	compensate := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	s.record(ctx, docID, progress.StageUploadTemplate, progress.StatusRunning)
	templateKey := TemplateKey(docID, in.TemplateName)
	templateLocator, err := s.storage.Upload(ctx, templateKey, bytes.NewReader(in.TemplateData))
	if err != nil {
		s.record(ctx, docID, progress.StageUploadTemplate, progress.StatusFailed)
		return nil, nil, fmt.Errorf("template upload failed: %w", err)
	}
	undo = append(undo, func() {
		if err := s.storage.Delete(ctx, templateKey); err != nil {
			log.Error().Err(err).Str("key", templateKey).Msg("Compensating delete failed")
		}
	})
	s.record(ctx, docID, progress.StageUploadTemplate, progress.StatusDone)

	s.record(ctx, docID, progress.StageCommit, progress.StatusRunning)
	resultsKey := ResultsKey(docID, in.ResultsName)
	resultsLocator, err := s.storage.Upload(ctx, resultsKey, bytes.NewReader(in.ResultsData))
	if err != nil {
		s.record(ctx, docID, progress.StageCommit, progress.StatusFailed)
		compensate()
		return nil, nil, fmt.Errorf("results upload failed: %w", err)
	}
	undo = append(undo, func() {
		if err := s.storage.Delete(ctx, resultsKey); err != nil {
			log.Error().Err(err).Str("key", resultsKey).Msg("Compensating delete failed")
		}
	})

	doc := &model.StoredDocument{
		ID:              docID,
		Session:         in.Session,
		Term:            in.Term,
		ClassID:         in.ClassID,
		ClassName:       class.Name,
		TemplateFile:    model.FileRef{Name: in.TemplateName, Locator: templateLocator},
		ResultsFile:     model.FileRef{Name: in.ResultsName, Locator: resultsLocator},
		IngestionStatus: model.IngestionStatusPending,
		UploadedAt:      time.Now().UTC(),
	}
	if err := s.repo.SaveDocument(ctx, doc); err != nil {
		s.record(ctx, docID, progress.StageCommit, progress.StatusFailed)
		compensate()
		return nil, nil, fmt.Errorf("metadata commit failed: %w", err)
	}
	s.record(ctx, docID, progress.StageCommit, progress.StatusDone)

	job := model.IngestionJob{
		DocumentID: docID,
		ResultsKey: resultsKey,
		Session:    in.Session,
		Term:       in.Term,
		ClassID:    in.ClassID,
		SheetName:  session.SelectedSheet(),
		Mapping:    session.Mapping(),
	}
	if err := s.producer.EnqueueIngestionJob(ctx, job); err != nil {
		// The document is committed; ingestion can be retried later.
		log.Error().Err(err).Msg("Failed to enqueue ingestion job")
	} else {
		s.record(ctx, docID, progress.StageIngestion, progress.StatusPending)
	}

	log.Info().Int("warnings", len(warnings)).Msg("Document uploaded")
	return doc, warnings, nil
}

// Delete removes the metadata record and both blobs. Each step is attempted
// regardless of earlier failures; successful deletions are not rolled back,
// the first error is reported after all steps ran.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	var firstErr error
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		firstErr = fmt.Errorf("metadata delete failed: %w", err)
	}
	if err := s.storage.Delete(ctx, TemplateKey(id, doc.TemplateFile.Name)); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("template blob delete failed: %w", err)
	}
	if err := s.storage.Delete(ctx, ResultsKey(id, doc.ResultsFile.Name)); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("results blob delete failed: %w", err)
	}
	return firstErr
}

// ListVisible returns the documents the requester may see.
func (s *Service) ListVisible(ctx context.Context, requester model.Requester) ([]model.StoredDocument, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	classes, err := s.dir.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	return VisibleDocuments(requester, docs, classes), nil
}

func (s *Service) record(ctx context.Context, docID string, stage progress.Stage, status progress.Status) {
	if s.tracker == nil {
		return
	}
	if err := s.tracker.Set(ctx, docID, stage, status); err != nil {
		s.log.Warn().Err(err).Str("document_id", docID).Msg("Failed to record progress")
	}
}
