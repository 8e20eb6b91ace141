package progress

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/asaniustaz/Campusconnect-sub000/internal/config"
	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
)

// Stage is one coarse step of an upload. The contract is deliberately
// coarse: four upload stages plus ingestion, no byte-level progress.
type Stage string

const (
	StageScanTemplate   Stage = "scan_template"
	StageScanScoresheet Stage = "scan_scoresheet"
	StageUploadTemplate Stage = "upload_template"
	StageCommit         Stage = "upload_results_commit"
	StageIngestion      Stage = "ingestion"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Tracker records per-document stage statuses in a Redis hash so the UI can
// poll them while an upload or ingestion is in flight.
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTracker(client *redis.Client, cfg *config.Config) *Tracker {
	return &Tracker{client: client, ttl: cfg.Redis.ProgressTTL}
}

func key(documentID string) string {
	return "progress:document:" + documentID
}

func (t *Tracker) Set(ctx context.Context, documentID string, stage Stage, status Status) error {
	k := key(documentID)
	pipe := t.client.TxPipeline()
	pipe.HSet(ctx, k, string(stage), string(status))
	pipe.HSet(ctx, k, "updated_at", time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, k, t.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (t *Tracker) Get(ctx context.Context, documentID string) (*model.ProgressResponse, error) {
	fields, err := t.client.HGetAll(ctx, key(documentID)).Result()
	if err != nil {
		return nil, err
	}

	resp := &model.ProgressResponse{
		DocumentID: documentID,
		Stages:     make(map[string]string),
	}
	for field, value := range fields {
		if field == "updated_at" {
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				resp.UpdatedAt = ts
			}
			continue
		}
		resp.Stages[field] = value
	}
	return resp, nil
}
