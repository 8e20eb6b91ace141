package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/internal/progress"
	pkgerrors "github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

type fakeRegistry struct {
	statuses map[string]model.IngestionStatus
	errors   map[string]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		statuses: make(map[string]model.IngestionStatus),
		errors:   make(map[string]string),
	}
}

func (f *fakeRegistry) SaveDocument(_ context.Context, _ *model.StoredDocument) error { return nil }

func (f *fakeRegistry) GetDocument(_ context.Context, _ string) (*model.StoredDocument, error) {
	return nil, pkgerrors.ErrDocumentNotFound
}

func (f *fakeRegistry) ListDocuments(_ context.Context) ([]model.StoredDocument, error) {
	return nil, nil
}

func (f *fakeRegistry) DeleteDocument(_ context.Context, _ string) error { return nil }

func (f *fakeRegistry) UpdateIngestionStatus(_ context.Context, id string, status model.IngestionStatus, errorMessage *string) error {
	f.statuses[id] = status
	if errorMessage != nil {
		f.errors[id] = *errorMessage
	}
	return nil
}

type fakeDirectory struct {
	class    model.SchoolClass
	students []model.User
	subjects []model.Subject
}

func (f *fakeDirectory) GetClass(_ context.Context, id string) (*model.SchoolClass, error) {
	if id != f.class.ID {
		return nil, pkgerrors.ErrClassNotFound
	}
	class := f.class
	return &class, nil
}

func (f *fakeDirectory) ListStudentsInClass(_ context.Context, _ string) ([]model.User, error) {
	return f.students, nil
}

func (f *fakeDirectory) ListSubjectsForSection(_ context.Context, _ string) ([]model.Subject, error) {
	return f.subjects, nil
}

type fakeScoreStore struct {
	records []model.ScoreRecord
}

func (f *fakeScoreStore) UpsertScores(_ context.Context, records []model.ScoreRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeScoreStore) ListScores(_ context.Context, _, _ string) ([]model.ScoreRecord, error) {
	return f.records, nil
}

func (f *fakeScoreStore) ListScoresForClass(_ context.Context, _, _, _ string) ([]model.ScoreRecord, error) {
	return f.records, nil
}

func (f *fakeScoreStore) ListScoresForStudent(_ context.Context, _ string) ([]model.ScoreRecord, error) {
	return f.records, nil
}

type fakeBlobStore struct {
	blobs map[string][]byte
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, data io.Reader) (string, error) {
	blob, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.blobs[key] = blob
	return "http://blobs.local/" + key, nil
}

func (f *fakeBlobStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	blob, ok := f.blobs[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(blob)), nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

func (f *fakeBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

type fakeDLQ struct {
	jobs []model.IngestionJob
}

func (f *fakeDLQ) EnqueueIngestionDLQ(_ context.Context, job model.IngestionJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeTracker struct {
	stages map[string]progress.Status
}

func (f *fakeTracker) Set(_ context.Context, _ string, stage progress.Stage, status progress.Status) error {
	if f.stages == nil {
		f.stages = make(map[string]progress.Status)
	}
	f.stages[string(stage)] = status
	return nil
}

func newTestWorker(store *fakeBlobStore) (*IngestionWorker, *fakeRegistry, *fakeScoreStore, *fakeDLQ, *fakeTracker) {
	reg := newFakeRegistry()
	scoreStore := &fakeScoreStore{}
	dlq := &fakeDLQ{}
	tracker := &fakeTracker{}
	dir := &fakeDirectory{
		class: model.SchoolClass{ID: "C1", Name: "JSS 1", Section: "College"},
		students: []model.User{
			{ID: "ST1", FirstName: "Aisha", Surname: "Bello", Role: model.RoleStudent},
		},
		subjects: []model.Subject{
			{ID: "SB1", Title: "Mathematics", Code: "MTH", SchoolSection: "College"},
		},
	}
	w := &IngestionWorker{
		registry: reg,
		dir:      dir,
		scores:   scoreStore,
		storage:  store,
		tracker:  tracker,
		dlq:      dlq,
		log:      zerolog.Nop(),
	}
	return w, reg, scoreStore, dlq, tracker
}

func ingestionJob() model.IngestionJob {
	return model.IngestionJob{
		DocumentID: "doc-1",
		ResultsKey: "documents/doc-1/results-scores.csv",
		Session:    "2025/2026",
		Term:       "First Term",
		ClassID:    "C1",
		SheetName:  "Sheet1",
		Mapping: map[string]string{
			"student_name": "Name",
			"Mathematics":  "Maths",
		},
	}
}

func TestProcessDocument_IngestsScores(t *testing.T) {
	job := ingestionJob()
	store := &fakeBlobStore{blobs: map[string][]byte{
		job.ResultsKey: []byte("Name,Maths\nAisha Bello,80\n"),
	}}
	w, reg, scoreStore, dlq, tracker := newTestWorker(store)

	err := w.processDocument(context.Background(), job)
	require.NoError(t, err)

	require.Len(t, scoreStore.records, 1)
	assert.Equal(t, "ST1", scoreStore.records[0].StudentID)
	assert.Equal(t, "SB1", scoreStore.records[0].SubjectID)
	assert.Equal(t, 80, scoreStore.records[0].Score)

	assert.Equal(t, model.IngestionStatusIngestedOK, reg.statuses[job.DocumentID])
	assert.Equal(t, progress.StatusDone, tracker.stages[string(progress.StageIngestion)])
	assert.Empty(t, dlq.jobs)
}

func TestProcessDocument_FailureParksJobOnDLQ(t *testing.T) {
	// A well-formed job whose scoresheet carries a malformed score: the
	// document is marked failed and the job lands on the dead letter queue
	// instead of being dropped.
	job := ingestionJob()
	store := &fakeBlobStore{blobs: map[string][]byte{
		job.ResultsKey: []byte("Name,Maths\nAisha Bello,abc\n"),
	}}
	w, reg, scoreStore, dlq, tracker := newTestWorker(store)

	err := w.processDocument(context.Background(), job)
	require.Error(t, err)

	assert.Empty(t, scoreStore.records)
	assert.Equal(t, model.IngestionStatusFailed, reg.statuses[job.DocumentID])
	assert.NotEmpty(t, reg.errors[job.DocumentID])
	assert.Equal(t, progress.StatusFailed, tracker.stages[string(progress.StageIngestion)])

	require.Len(t, dlq.jobs, 1)
	assert.Equal(t, job.DocumentID, dlq.jobs[0].DocumentID)
	assert.Equal(t, job.Mapping, dlq.jobs[0].Mapping)
}

func TestProcessDocument_MissingBlobParksJobOnDLQ(t *testing.T) {
	job := ingestionJob()
	w, reg, _, dlq, _ := newTestWorker(&fakeBlobStore{blobs: map[string][]byte{}})

	err := w.processDocument(context.Background(), job)
	require.Error(t, err)

	assert.Equal(t, model.IngestionStatusFailed, reg.statuses[job.DocumentID])
	require.Len(t, dlq.jobs, 1)
	assert.Equal(t, job.ResultsKey, dlq.jobs[0].ResultsKey)
}

func TestHandleMessage_SubmitFailureSurfacesToConsumer(t *testing.T) {
	// When the pool cannot accept the job before the context is cancelled,
	// handleMessage reports the error so the consumer moves the message to
	// the dead letter queue.
	w, _, _, _, _ := newTestWorker(&fakeBlobStore{blobs: map[string][]byte{}})
	w.workerPool = NewWorkerPool(1) // never started, buffer fills up

	ctx, cancel := context.WithCancel(context.Background())
	payload := []byte(`{"document_id":"doc-1"}`)

	// Fill the job buffer, then cancel.
	require.NoError(t, w.workerPool.Submit(ctx, func(context.Context) error { return nil }))
	require.NoError(t, w.workerPool.Submit(ctx, func(context.Context) error { return nil }))
	cancel()

	err := w.handleMessage(ctx, payload)
	assert.ErrorIs(t, err, context.Canceled)
}
