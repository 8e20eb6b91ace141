package worker

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rs/zerolog"

	"github.com/asaniustaz/Campusconnect-sub000/internal/config"
	"github.com/asaniustaz/Campusconnect-sub000/internal/logger"
	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/internal/progress"
	"github.com/asaniustaz/Campusconnect-sub000/internal/queue"
	"github.com/asaniustaz/Campusconnect-sub000/internal/registry"
	"github.com/asaniustaz/Campusconnect-sub000/internal/scores"
	"github.com/asaniustaz/Campusconnect-sub000/internal/sheet"
	"github.com/asaniustaz/Campusconnect-sub000/internal/storage"
)

// Directory is the slice of the directory store ingestion needs to resolve
// a job's class roster and subject list.
type Directory interface {
	GetClass(ctx context.Context, id string) (*model.SchoolClass, error)
	ListStudentsInClass(ctx context.Context, classID string) ([]model.User, error)
	ListSubjectsForSection(ctx context.Context, section string) ([]model.Subject, error)
}

// DeadLetterQueue parks jobs whose processing failed for later replay.
type DeadLetterQueue interface {
	EnqueueIngestionDLQ(ctx context.Context, job model.IngestionJob) error
}

// ProgressRecorder records coarse stage transitions for UI polling.
type ProgressRecorder interface {
	Set(ctx context.Context, documentID string, stage progress.Stage, status progress.Status) error
}

// IngestionWorker drains the ingestion queue, turning committed scoresheets
// into score records: download the results blob, re-open the selected sheet,
// drive the committed mapping through scores.Extraction, and upsert.
type IngestionWorker struct {
	cfg        *config.Config
	registry   registry.Repository
	dir        Directory
	scores     scores.Repository
	storage    storage.Storage
	tracker    ProgressRecorder
	dlq        DeadLetterQueue
	consumer   *queue.Consumer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewIngestionWorker(
	cfg *config.Config,
	registryRepo registry.Repository,
	dir Directory,
	scoresRepo scores.Repository,
	store storage.Storage,
	tracker ProgressRecorder,
	redisClient *queue.RedisClient,
) *IngestionWorker {
	return &IngestionWorker{
		cfg:        cfg,
		registry:   registryRepo,
		dir:        dir,
		scores:     scoresRepo,
		storage:    store,
		tracker:    tracker,
		dlq:        queue.NewProducer(redisClient, cfg),
		consumer:   queue.NewConsumer(redisClient, cfg),
		workerPool: NewWorkerPool(cfg.Workers.Ingestion.Count),
		log:        logger.Get(),
	}
}

func (w *IngestionWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting ingestion worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeIngestionQueue(ctx, w.handleMessage)
}

func (w *IngestionWorker) Stop() {
	w.log.Info().Msg("Stopping ingestion worker")
	w.workerPool.Stop()
}

func (w *IngestionWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.IngestionJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal ingestion job")
		return err
	}

	w.log.Info().Str("document_id", job.DocumentID).Str("results_key", job.ResultsKey).Msg("Processing ingestion job")

	return w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.processDocument(ctx, job)
	})
}

func (w *IngestionWorker) processDocument(ctx context.Context, job model.IngestionJob) error {
	log := w.log.With().Str("document_id", job.DocumentID).Logger()
	w.recordProgress(ctx, job.DocumentID, progress.StatusRunning)

	class, err := w.dir.GetClass(ctx, job.ClassID)
	if err != nil {
		return w.fail(ctx, log, job, err, "Class lookup failed")
	}

	students, err := w.dir.ListStudentsInClass(ctx, job.ClassID)
	if err != nil {
		return w.fail(ctx, log, job, err, "Student lookup failed")
	}

	subjects, err := w.dir.ListSubjectsForSection(ctx, class.Section)
	if err != nil {
		return w.fail(ctx, log, job, err, "Subject lookup failed")
	}

	log.Debug().Msg("Downloading scoresheet blob")
	reader, err := w.storage.Download(ctx, job.ResultsKey)
	if err != nil {
		return w.fail(ctx, log, job, err, "Failed to download scoresheet")
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return w.fail(ctx, log, job, err, "Failed to read scoresheet data")
	}

	wb, err := sheet.Open(job.ResultsKey, data)
	if err != nil {
		return w.fail(ctx, log, job, err, "Failed to parse scoresheet")
	}

	headers, err := wb.HeaderRow(job.SheetName)
	if err != nil {
		return w.fail(ctx, log, job, err, "Selected sheet missing from scoresheet")
	}
	rows, err := wb.DataRows(job.SheetName)
	if err != nil {
		return w.fail(ctx, log, job, err, "Failed to read scoresheet rows")
	}

	extraction := scores.Extraction{
		Session:  job.Session,
		Term:     job.Term,
		ClassID:  job.ClassID,
		Mapping:  job.Mapping,
		Students: students,
		Subjects: subjects,
	}
	records, err := extraction.Records(headers, rows)
	if err != nil {
		return w.fail(ctx, log, job, err, "Score extraction failed")
	}

	log.Debug().Int("record_count", len(records)).Msg("Upserting score records")
	if err := w.scores.UpsertScores(ctx, records); err != nil {
		return w.fail(ctx, log, job, err, "Failed to upsert scores")
	}

	if err := w.registry.UpdateIngestionStatus(ctx, job.DocumentID, model.IngestionStatusIngestedOK, nil); err != nil {
		log.Error().Err(err).Msg("Failed to update ingestion status")
		return err
	}
	w.recordProgress(ctx, job.DocumentID, progress.StatusDone)

	log.Info().Int("record_count", len(records)).Msg("Scoresheet ingested")
	return nil
}

// fail marks the document FAILED, records progress, and parks the job on the
// dead letter queue. Jobs reach processing asynchronously, so the consumer
// never sees their errors; the DLQ push has to happen here.
func (w *IngestionWorker) fail(ctx context.Context, log zerolog.Logger, job model.IngestionJob, err error, msg string) error {
	log.Error().Err(err).Msg(msg)
	errorMsg := err.Error()
	if updateErr := w.registry.UpdateIngestionStatus(ctx, job.DocumentID, model.IngestionStatusFailed, &errorMsg); updateErr != nil {
		log.Error().Err(updateErr).Msg("Failed to record ingestion failure")
	}
	w.recordProgress(ctx, job.DocumentID, progress.StatusFailed)
	if w.dlq != nil {
		if dlqErr := w.dlq.EnqueueIngestionDLQ(ctx, job); dlqErr != nil {
			log.Error().Err(dlqErr).Msg("Failed to move job to DLQ")
		}
	}
	return err
}

func (w *IngestionWorker) recordProgress(ctx context.Context, documentID string, status progress.Status) {
	if w.tracker == nil {
		return
	}
	if err := w.tracker.Set(ctx, documentID, progress.StageIngestion, status); err != nil {
		w.log.Warn().Err(err).Str("document_id", documentID).Msg("Failed to record progress")
	}
}
