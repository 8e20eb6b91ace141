package results

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
)

func student(id, name, classID string) model.User {
	return model.User{
		ID:        id,
		FirstName: name,
		Surname:   "Test",
		Role:      model.RoleStudent,
		ClassID:   &classID,
	}
}

func fixtures() ([]model.User, []model.SchoolClass, []model.Subject, []model.ScoreRecord) {
	students := []model.User{
		student("ST1", "StudentA", "C1"),
		student("ST2", "StudentB", "C1"),
	}
	classes := []model.SchoolClass{
		{ID: "C1", Name: "JSS 1", DisplayLevel: "Secondary", Section: "College"},
	}
	subjects := []model.Subject{
		{ID: "SB1", Title: "Mathematics", Code: "MTH", SchoolSection: "College"},
		{ID: "SB2", Title: "English", Code: "ENG", SchoolSection: "College"},
	}
	scores := []model.ScoreRecord{
		{Term: "First Term", ClassID: "C1", StudentID: "ST1", SubjectID: "SB1", Score: 80},
		{Term: "First Term", ClassID: "C1", StudentID: "ST1", SubjectID: "SB2", Score: 60},
		{Term: "First Term", ClassID: "C1", StudentID: "ST2", SubjectID: "SB1", Score: 90},
		{Term: "First Term", ClassID: "C1", StudentID: "ST2", SubjectID: "SB2", Score: 70},
	}
	return students, classes, subjects, scores
}

func TestBuildResultSets_TwoStudentScenario(t *testing.T) {
	students, classes, subjects, scores := fixtures()
	engine := NewEngine(DefaultScale())

	sets := engine.BuildResultSets(students, classes, subjects, "First Term", scores)
	require.Len(t, sets, 1)

	set := sets[0]
	assert.Equal(t, "C1", set.ClassID)
	assert.Equal(t, "First Term", set.Term)
	require.Len(t, set.Students, 2)

	// StudentB averages 80, StudentA 70, so B ranks first.
	assert.Equal(t, "ST2", set.Students[0].StudentID)
	assert.Equal(t, 80.0, set.Students[0].TermAverage)
	assert.Equal(t, "1st", set.Students[0].TermPosition)

	assert.Equal(t, "ST1", set.Students[1].StudentID)
	assert.Equal(t, 70.0, set.Students[1].TermAverage)
	assert.Equal(t, "2nd", set.Students[1].TermPosition)
}

func TestBuildResultSets_RankInvariants(t *testing.T) {
	classID := "C1"
	var students []model.User
	var scores []model.ScoreRecord
	ids := []string{"ST1", "ST2", "ST3", "ST4", "ST5"}
	marks := []int{55, 91, 91, 12, 70}
	for i, id := range ids {
		students = append(students, student(id, "S"+id, classID))
		scores = append(scores, model.ScoreRecord{
			Term: "First Term", ClassID: classID,
			StudentID: id, SubjectID: "SB1", Score: marks[i],
		})
	}
	classes := []model.SchoolClass{{ID: classID, Name: "JSS 1", Section: "College"}}
	subjects := []model.Subject{{ID: "SB1", Title: "Mathematics", SchoolSection: "College"}}

	sets := NewEngine(DefaultScale()).BuildResultSets(students, classes, subjects, "First Term", scores)
	require.Len(t, sets, 1)
	rows := sets[0].Students
	require.Len(t, rows, len(ids))

	// Positions are exactly 1..N, averages non-increasing.
	for i, row := range rows {
		assert.Equal(t, Ordinal(i+1), row.TermPosition)
		if i > 0 {
			assert.GreaterOrEqual(t, rows[i-1].TermAverage, row.TermAverage)
		}
	}

	// Tied students (ST2 and ST3, both 91) keep enrollment order with
	// distinct consecutive ranks.
	assert.Equal(t, "ST2", rows[0].StudentID)
	assert.Equal(t, "1st", rows[0].TermPosition)
	assert.Equal(t, "ST3", rows[1].StudentID)
	assert.Equal(t, "2nd", rows[1].TermPosition)
}

func TestBuildResultSets_MissingScoreDividesByFullSubjectCount(t *testing.T) {
	students := []model.User{student("ST1", "StudentA", "C1")}
	classes := []model.SchoolClass{{ID: "C1", Name: "JSS 1", Section: "College"}}
	subjects := []model.Subject{
		{ID: "SB1", Title: "Mathematics", SchoolSection: "College"},
		{ID: "SB2", Title: "English", SchoolSection: "College"},
	}
	// Only one of the two applicable subjects has a recorded score.
	scores := []model.ScoreRecord{
		{Term: "First Term", ClassID: "C1", StudentID: "ST1", SubjectID: "SB1", Score: 80},
	}

	sets := NewEngine(DefaultScale()).BuildResultSets(students, classes, subjects, "First Term", scores)
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Students, 1)
	assert.Equal(t, 40.0, sets[0].Students[0].TermAverage)
}

func TestBuildResultSets_SkipsEmptyCohorts(t *testing.T) {
	students := []model.User{
		student("ST1", "StudentA", "C1"),
		student("ST9", "Orphan", "GONE"), // class no longer exists
	}
	classes := []model.SchoolClass{
		{ID: "C1", Name: "JSS 1", Section: "College"},
		{ID: "C2", Name: "JSS 2", Section: "College"},  // no students
		{ID: "C3", Name: "Hifz 1", Section: "Tahfeez"}, // no subjects
	}
	subjects := []model.Subject{{ID: "SB1", Title: "Mathematics", SchoolSection: "College"}}
	scores := []model.ScoreRecord{
		{Term: "First Term", ClassID: "C1", StudentID: "ST1", SubjectID: "SB1", Score: 50},
	}

	sets := NewEngine(DefaultScale()).BuildResultSets(students, classes, subjects, "First Term", scores)
	require.Len(t, sets, 1)
	assert.Equal(t, "C1", sets[0].ClassID)
}

func TestBuildResultSets_Deterministic(t *testing.T) {
	students, classes, subjects, scores := fixtures()
	engine := NewEngine(DefaultScale())

	first := engine.BuildResultSets(students, classes, subjects, "First Term", scores)
	second := engine.BuildResultSets(students, classes, subjects, "First Term", scores)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("result sets differ across runs:\n%+v\n%+v", first, second)
	}
}

func TestStudentResults(t *testing.T) {
	students, classes, subjects, scores := fixtures()
	sets := NewEngine(DefaultScale()).BuildResultSets(students, classes, subjects, "First Term", scores)

	views := StudentResults("ST1", sets)
	require.Len(t, views, 1)
	assert.Equal(t, "First Term", views[0].Term)
	assert.Equal(t, "JSS 1", views[0].ClassName)
	assert.Equal(t, 70.0, views[0].TermAverage)
	assert.Equal(t, "2nd", views[0].TermPosition)

	assert.Empty(t, StudentResults("NOBODY", sets))
}

func TestOrdinal(t *testing.T) {
	ranks := []int{1, 2, 3, 4, 11, 12, 13, 21, 22, 23}
	want := []string{"1st", "2nd", "3rd", "4th", "11th", "12th", "13th", "21st", "22nd", "23rd"}
	for i, rank := range ranks {
		assert.Equal(t, want[i], Ordinal(rank))
	}
	assert.Equal(t, "100th", Ordinal(100))
	assert.Equal(t, "111th", Ordinal(111))
	assert.Equal(t, "101st", Ordinal(101))
}

func TestGradeBoundaries(t *testing.T) {
	scale := DefaultScale()
	cases := map[int]string{
		100: "A", 75: "A", 74: "B", 65: "B", 64: "C", 50: "C",
		49: "D", 45: "D", 44: "E", 40: "E", 39: "F", 0: "F",
	}
	for score, want := range cases {
		assert.Equal(t, want, scale.GradeFor(score), "score %d", score)
	}
}
