package mapping

import (
	"regexp"
	"strings"

	"github.com/asaniustaz/Campusconnect-sub000/internal/sheet"
	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// Unmapped is the sentinel a caller passes to SetMapping to clear an entry.
// Absence from the mapping is the only representation of "unmapped"; nothing
// is ever stored against a field to mean it.
const Unmapped = ""

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// ExtractPlaceholders scans template text for {{ name }} tokens and returns
// the trimmed inner names, deduplicated, in order of first occurrence. No
// tokens means an empty result, not an error.
func ExtractPlaceholders(templateText string) []string {
	var placeholders []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(templateText, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		placeholders = append(placeholders, name)
	}
	return placeholders
}

// normalize folds case and strips spaces, tabs and underscores so
// "Student Name", "student_name" and "STUDENTNAME" all compare equal.
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

// AutoMap matches each placeholder against the headers after normalizing
// both sides. Headers are tried in their original order and the first match
// wins; placeholders with no match are simply absent from the result.
func AutoMap(placeholders, headers []string) map[string]string {
	mapped := make(map[string]string)
	for _, field := range placeholders {
		want := normalize(field)
		for _, header := range headers {
			if normalize(header) == want {
				mapped[field] = header
				break
			}
		}
	}
	return mapped
}

// Session is one mapping workflow: a template's placeholders against one
// scoresheet, with the currently selected sheet's headers and the working
// field-to-header mapping.
type Session struct {
	placeholders  []string
	workbook      *sheet.Workbook
	selectedSheet string
	headers       []string
	mapping       map[string]string
}

// NewSession scans the template text and the workbook's first sheet and
// seeds the mapping from AutoMap.
func NewSession(templateText string, wb *sheet.Workbook) (*Session, error) {
	s := &Session{
		placeholders: ExtractPlaceholders(templateText),
		workbook:     wb,
	}
	if err := s.SelectSheet(wb.SheetNames()[0]); err != nil {
		return nil, err
	}
	return s, nil
}

// SelectSheet switches the active sheet, re-derives headers, and resets the
// mapping from scratch via AutoMap. Manual overrides made against the
// previous sheet are deliberately discarded; callers surface the reset to
// the actor rather than hiding it.
func (s *Session) SelectSheet(name string) error {
	headers, err := s.workbook.HeaderRow(name)
	if err != nil {
		return err
	}
	s.selectedSheet = name
	s.headers = headers
	s.mapping = AutoMap(s.placeholders, headers)
	return nil
}

func (s *Session) Placeholders() []string { return s.placeholders }
func (s *Session) SelectedSheet() string  { return s.selectedSheet }
func (s *Session) Headers() []string      { return s.headers }
func (s *Session) SheetNames() []string   { return s.workbook.SheetNames() }

// Mapping returns a copy of the current field-to-header mapping.
func (s *Session) Mapping() map[string]string {
	out := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out
}

// SetMapping overrides one field. Passing Unmapped removes the entry.
func (s *Session) SetMapping(field, header string) {
	if header == Unmapped {
		delete(s.mapping, field)
		return
	}
	s.mapping[field] = header
}

// UnmappedFields lists placeholders with no mapping entry, in placeholder
// order.
func (s *Session) UnmappedFields() []string {
	var unmapped []string
	for _, field := range s.placeholders {
		if _, ok := s.mapping[field]; !ok {
			unmapped = append(unmapped, field)
		}
	}
	return unmapped
}

// Validate checks the commit precondition: a template with placeholders
// needs at least one mapped field. Partially unmapped placeholders are
// returned as warnings; those fields render blank downstream.
func (s *Session) Validate() ([]string, error) {
	if len(s.placeholders) > 0 && len(s.mapping) == 0 {
		return nil, errors.ErrNoMappings
	}

	var warnings []string
	for _, field := range s.UnmappedFields() {
		warnings = append(warnings, "placeholder '"+field+"' is not mapped and will render blank")
	}
	return warnings, nil
}
