package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

func extraction() Extraction {
	roll := "042"
	return Extraction{
		Session: "2025/2026",
		Term:    "First Term",
		ClassID: "C1",
		Mapping: map[string]string{
			"student_name": "Name",
			"Mathematics":  "Maths",
			"ENG":          "English",
			"class_name":   "Class", // no matching subject, ignored
		},
		Students: []model.User{
			{ID: "ST1", FirstName: "Aisha", Surname: "Bello", Role: model.RoleStudent, RollNumber: &roll},
			{ID: "ST2", FirstName: "Musa", Surname: "Sani", Role: model.RoleStudent},
		},
		Subjects: []model.Subject{
			{ID: "SB1", Title: "Mathematics", Code: "MTH", SchoolSection: "College"},
			{ID: "SB2", Title: "English Language", Code: "ENG", SchoolSection: "College"},
		},
	}
}

func TestExtraction_Records(t *testing.T) {
	headers := []string{"Name", "Maths", "English", "Class"}
	rows := [][]string{
		{"Aisha Bello", "80", "60", "JSS 1"},
		{"Musa Sani", "90", "70", "JSS 1"},
		{"Unknown Person", "50", "50", "JSS 1"}, // skipped, not enrolled
	}

	records, err := extraction().Records(headers, rows)
	require.NoError(t, err)
	require.Len(t, records, 4)

	byStudent := make(map[string]map[string]int)
	for _, rec := range records {
		assert.Equal(t, "2025/2026", rec.Session)
		assert.Equal(t, "First Term", rec.Term)
		assert.Equal(t, "C1", rec.ClassID)
		if byStudent[rec.StudentID] == nil {
			byStudent[rec.StudentID] = make(map[string]int)
		}
		byStudent[rec.StudentID][rec.SubjectID] = rec.Score
	}
	assert.Equal(t, map[string]int{"SB1": 80, "SB2": 60}, byStudent["ST1"])
	assert.Equal(t, map[string]int{"SB1": 90, "SB2": 70}, byStudent["ST2"])
}

func TestExtraction_MatchesByRollNumberAndID(t *testing.T) {
	e := extraction()
	e.Mapping = map[string]string{"roll_no": "Roll", "MTH": "Maths"}

	records, err := e.Records([]string{"Roll", "Maths"}, [][]string{{"042", "55"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ST1", records[0].StudentID)

	e.Mapping = map[string]string{"student_id": "SID", "MTH": "Maths"}
	records, err = e.Records([]string{"SID", "Maths"}, [][]string{{"ST2", "41"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ST2", records[0].StudentID)
}

func TestExtraction_EmptyCellSkipped(t *testing.T) {
	records, err := extraction().Records(
		[]string{"Name", "Maths", "English"},
		[][]string{{"Aisha Bello", "", "60"}},
	)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SB2", records[0].SubjectID)
}

func TestExtraction_BadScoreFailsFile(t *testing.T) {
	for _, bad := range []string{"abc", "-1", "101", "7.5"} {
		_, err := extraction().Records(
			[]string{"Name", "Maths", "English"},
			[][]string{{"Aisha Bello", bad, "60"}},
		)
		var verr errors.ValidationError
		require.ErrorAs(t, err, &verr, "score %q", bad)
		assert.Equal(t, "score", verr.Field)
	}
}

func TestExtraction_CompetingIdentityColumnsPickSortedFirst(t *testing.T) {
	// Two identity placeholders mapped to different columns: the first in
	// sorted placeholder order ("roll_no" before "student_id") decides the
	// identity column, regardless of map iteration order.
	e := extraction()
	e.Mapping = map[string]string{
		"roll_no":     "Roll",
		"student_id":  "SID",
		"Mathematics": "Maths",
	}
	headers := []string{"Roll", "SID", "Maths"}
	rows := [][]string{{"042", "ST2", "55"}}

	for i := 0; i < 20; i++ {
		records, err := e.Records(headers, rows)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "ST1", records[0].StudentID)
	}
}

func TestExtraction_SharedHeaderPicksSortedLastSubject(t *testing.T) {
	// Two subject placeholders mapped to the same column: the last in sorted
	// placeholder order ("Mathematics" after "ENG") owns the column.
	e := extraction()
	e.Mapping = map[string]string{
		"student_name": "Name",
		"ENG":          "Scores",
		"Mathematics":  "Scores",
	}
	headers := []string{"Name", "Scores"}
	rows := [][]string{{"Aisha Bello", "77"}}

	for i := 0; i < 20; i++ {
		records, err := e.Records(headers, rows)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "SB1", records[0].SubjectID)
	}
}

func TestExtraction_NoIdentityColumn(t *testing.T) {
	e := extraction()
	e.Mapping = map[string]string{"Mathematics": "Maths"}

	_, err := e.Records([]string{"Maths"}, [][]string{{"80"}})
	var verr errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mapping", verr.Field)
}
