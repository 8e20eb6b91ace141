package scores

import (
	"sort"
	"strconv"
	"strings"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// identityFields are the placeholder names, after normalization, that mark
// the scoresheet column identifying the student.
var identityFields = map[string]bool{
	"studentid":   true,
	"studentname": true,
	"rollno":      true,
	"rollnumber":  true,
	"admissionno": true,
}

func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_':
			return -1
		}
		return r
	}, s)
}

// Extraction turns mapped scoresheet rows into score records for one
// (session, term, class). The committed mapping decides which column
// identifies the student and which columns belong to which subject;
// mapped placeholders that match no subject (class name, term labels)
// are ignored.
type Extraction struct {
	Session  string
	Term     string
	ClassID  string
	Mapping  map[string]string // placeholder -> header
	Students []model.User      // enrolled students of the class
	Subjects []model.Subject   // applicable subjects of the class's section
}

// Records parses the data rows under the given headers. It fails on the
// first malformed or out-of-range score, mirroring the all-or-nothing
// ingestion contract; rows whose identity cell matches no enrolled student
// are skipped rather than failing the file.
func (e Extraction) Records(headers []string, rows [][]string) ([]model.ScoreRecord, error) {
	headerIdx := make(map[string]int, len(headers))
	for i, header := range headers {
		headerIdx[header] = i
	}

	// Walk the mapping in sorted placeholder order so column selection does
	// not depend on map iteration order when placeholders collide.
	fields := make([]string, 0, len(e.Mapping))
	for field := range e.Mapping {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	identityCol := -1
	subjectCols := make(map[int]string) // column index -> subject id
	var subjectIdx []int
	for _, field := range fields {
		idx, ok := headerIdx[e.Mapping[field]]
		if !ok {
			continue
		}
		if identityFields[normalize(field)] {
			if identityCol < 0 {
				identityCol = idx
			}
			continue
		}
		if subjectID := e.subjectFor(field); subjectID != "" {
			if _, seen := subjectCols[idx]; !seen {
				subjectIdx = append(subjectIdx, idx)
			}
			subjectCols[idx] = subjectID
		}
	}
	if identityCol < 0 {
		return nil, errors.ValidationError{
			Field:   "mapping",
			Value:   e.Mapping,
			Message: "no mapped column identifies the student",
		}
	}

	var records []model.ScoreRecord
	for _, row := range rows {
		if identityCol >= len(row) {
			continue
		}
		student := e.studentFor(strings.TrimSpace(row[identityCol]))
		if student == nil {
			continue
		}

		for _, col := range subjectIdx {
			subjectID := subjectCols[col]
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			score, err := strconv.Atoi(cell)
			if err != nil || score < 0 || score > 100 {
				return nil, errors.ValidationError{
					Field:   "score",
					Value:   cell,
					Message: "must be an integer between 0 and 100",
				}
			}
			records = append(records, model.ScoreRecord{
				Session:   e.Session,
				Term:      e.Term,
				ClassID:   e.ClassID,
				StudentID: student.ID,
				SubjectID: subjectID,
				Score:     score,
			})
		}
	}
	return records, nil
}

// subjectFor resolves a placeholder name to a subject by normalized title
// or code. Empty means the placeholder is not a subject column.
func (e Extraction) subjectFor(field string) string {
	want := normalize(field)
	for _, subject := range e.Subjects {
		if normalize(subject.Title) == want || normalize(subject.Code) == want {
			return subject.ID
		}
	}
	return ""
}

// studentFor matches an identity cell against id, roll number or full name.
func (e Extraction) studentFor(cell string) *model.User {
	if cell == "" {
		return nil
	}
	want := normalize(cell)
	for i := range e.Students {
		student := &e.Students[i]
		if student.ID == cell {
			return student
		}
		if student.RollNumber != nil && *student.RollNumber == cell {
			return student
		}
		if normalize(student.FullName()) == want {
			return student
		}
	}
	return nil
}
