package scores

import (
	"context"
	"database/sql"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
)

// Repository persists recorded scores, the aggregation engine's input.
// Upserts are keyed by (session, term, class, student, subject) so
// re-ingesting the same scoresheet is safe to retry.
type Repository interface {
	UpsertScores(ctx context.Context, records []model.ScoreRecord) error
	ListScores(ctx context.Context, session, term string) ([]model.ScoreRecord, error)
	ListScoresForClass(ctx context.Context, session, term, classID string) ([]model.ScoreRecord, error)
	ListScoresForStudent(ctx context.Context, studentID string) ([]model.ScoreRecord, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertScores(ctx context.Context, records []model.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO scores (session, term, class_id, student_id, subject_id, score)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE score = VALUES(score)`

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, query,
			rec.Session, rec.Term, rec.ClassID, rec.StudentID, rec.SubjectID, rec.Score)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]model.ScoreRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		err := rows.Scan(&rec.ID, &rec.Session, &rec.Term, &rec.ClassID,
			&rec.StudentID, &rec.SubjectID, &rec.Score)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *repository) ListScores(ctx context.Context, session, term string) ([]model.ScoreRecord, error) {
	return r.list(ctx,
		`SELECT id, session, term, class_id, student_id, subject_id, score
		 FROM scores WHERE session = ? AND term = ? ORDER BY id`,
		session, term)
}

func (r *repository) ListScoresForClass(ctx context.Context, session, term, classID string) ([]model.ScoreRecord, error) {
	return r.list(ctx,
		`SELECT id, session, term, class_id, student_id, subject_id, score
		 FROM scores WHERE session = ? AND term = ? AND class_id = ? ORDER BY id`,
		session, term, classID)
}

func (r *repository) ListScoresForStudent(ctx context.Context, studentID string) ([]model.ScoreRecord, error) {
	return r.list(ctx,
		`SELECT id, session, term, class_id, student_id, subject_id, score
		 FROM scores WHERE student_id = ? ORDER BY id`,
		studentID)
}
