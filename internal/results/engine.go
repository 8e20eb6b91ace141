package results

import (
	"sort"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
)

// Engine derives ranked term results from directory data and recorded
// scores. It is a pure computation over its inputs: the same inputs always
// produce the same result sets.
type Engine struct {
	scale *Scale
}

func NewEngine(scale *Scale) *Engine {
	return &Engine{scale: scale}
}

// scoreKey addresses one recorded score within a term.
type scoreKey struct {
	studentID string
	subjectID string
}

// BuildResultSets computes the broadsheet for every class in classes for one
// term. Scores are the recorded inputs for that term; a student with no
// recorded score for an applicable subject contributes zero to their sum but
// the average still divides by the full applicable-subject count.
//
// Classes with no enrolled students or no applicable subjects are skipped.
// Students whose class id does not match any given class are skipped without
// affecting other classes.
func (e *Engine) BuildResultSets(
	students []model.User,
	classes []model.SchoolClass,
	subjects []model.Subject,
	term string,
	scores []model.ScoreRecord,
) []model.ResultSet {
	scoreIdx := make(map[string]map[scoreKey]int)
	for _, rec := range scores {
		if rec.Term != term {
			continue
		}
		if scoreIdx[rec.ClassID] == nil {
			scoreIdx[rec.ClassID] = make(map[scoreKey]int)
		}
		scoreIdx[rec.ClassID][scoreKey{rec.StudentID, rec.SubjectID}] = rec.Score
	}

	var sets []model.ResultSet
	for _, class := range classes {
		enrolled := studentsOf(students, class.ID)
		applicable := subjectsOf(subjects, class.Section)
		if len(enrolled) == 0 || len(applicable) == 0 {
			continue
		}

		set := model.ResultSet{
			ClassID:   class.ID,
			ClassName: class.Name,
			Term:      term,
		}
		for _, student := range enrolled {
			set.Students = append(set.Students, e.buildStudentRow(student, applicable, scoreIdx[class.ID]))
		}
		rank(set.Students)
		sets = append(sets, set)
	}
	return sets
}

func (e *Engine) buildStudentRow(
	student model.User,
	applicable []model.Subject,
	classScores map[scoreKey]int,
) model.StudentTermResult {
	row := model.StudentTermResult{
		StudentID:   student.ID,
		StudentName: student.FullName(),
	}

	total := 0
	for _, subject := range applicable {
		score := classScores[scoreKey{student.ID, subject.ID}]
		total += score
		row.Results = append(row.Results, model.SubjectResult{
			SubjectID:   subject.ID,
			SubjectName: subject.Title,
			Score:       score,
			Grade:       e.scale.GradeFor(score),
		})
	}

	// Average over the applicable-subject count, not the recorded count.
	row.TermAverage = float64(total) / float64(len(applicable))
	return row
}

// rank sorts descending by average and assigns 1-based ordinal positions.
// The sort is stable so students with equal averages keep their enrollment
// order and still receive distinct consecutive ranks.
func rank(rows []model.StudentTermResult) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TermAverage > rows[j].TermAverage
	})
	for i := range rows {
		rows[i].TermPosition = Ordinal(i + 1)
	}
}

// StudentResults projects one student's row out of every result set they
// appear in. Pure view; no side effects.
func StudentResults(studentID string, sets []model.ResultSet) []model.StudentResultView {
	var views []model.StudentResultView
	for _, set := range sets {
		for _, row := range set.Students {
			if row.StudentID != studentID {
				continue
			}
			views = append(views, model.StudentResultView{
				Term:         set.Term,
				ClassName:    set.ClassName,
				Results:      row.Results,
				TermAverage:  row.TermAverage,
				TermPosition: row.TermPosition,
			})
		}
	}
	return views
}

func studentsOf(students []model.User, classID string) []model.User {
	var enrolled []model.User
	for _, s := range students {
		if s.Role != model.RoleStudent || s.ClassID == nil || *s.ClassID != classID {
			continue
		}
		enrolled = append(enrolled, s)
	}
	return enrolled
}

func subjectsOf(subjects []model.Subject, section string) []model.Subject {
	var applicable []model.Subject
	for _, s := range subjects {
		if s.SchoolSection == section {
			applicable = append(applicable, s)
		}
	}
	return applicable
}
