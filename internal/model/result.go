package model

// SubjectResult is one subject's score for one student in one term.
type SubjectResult struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Score       int    `json:"score"`
	Grade       string `json:"grade"`
}

// StudentTermResult is one row of a class broadsheet: every applicable
// subject's result for one student, with the term average and the student's
// position within the (class, term) cohort.
type StudentTermResult struct {
	StudentID    string          `json:"student_id"`
	StudentName  string          `json:"student_name"`
	Results      []SubjectResult `json:"results"`
	TermAverage  float64         `json:"term_average"`
	TermPosition string          `json:"term_position"`
}

// ResultSet is the broadsheet unit: all ranked student results for one
// (class, term) pair, ordered by rank.
type ResultSet struct {
	ClassID   string              `json:"class_id"`
	ClassName string              `json:"class_name"`
	Term      string              `json:"term"`
	Students  []StudentTermResult `json:"students"`
}

// StudentResultView is the per-student projection of one term's results,
// used by the student-facing results screen.
type StudentResultView struct {
	Term         string          `json:"term"`
	ClassName    string          `json:"class_name"`
	Results      []SubjectResult `json:"results"`
	TermAverage  float64         `json:"term_average"`
	TermPosition string          `json:"term_position"`
}

// ScoreRecord is the persisted aggregation input: one raw score keyed by
// (session, term, class, student, subject). Rows are written by the
// scoresheet ingestion worker and read by the aggregation engine.
type ScoreRecord struct {
	ID        int64  `json:"id" db:"id"`
	Session   string `json:"session" db:"session"`
	Term      string `json:"term" db:"term"`
	ClassID   string `json:"class_id" db:"class_id"`
	StudentID string `json:"student_id" db:"student_id"`
	SubjectID string `json:"subject_id" db:"subject_id"`
	Score     int    `json:"score" db:"score"`
}
