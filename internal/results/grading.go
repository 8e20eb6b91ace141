package results

import "github.com/asaniustaz/Campusconnect-sub000/internal/config"

// Scale maps a score to a letter grade. Bands are ordered highest first; a
// score earns the first band whose minimum it meets.
type Scale struct {
	bands    []config.GradeBand
	fallback string
}

func NewScale(cfg config.GradingConfig) *Scale {
	return &Scale{bands: cfg.Bands, fallback: cfg.Fallback}
}

// DefaultScale is the school's standard scale: A>=75, B>=65, C>=50, D>=45,
// E>=40, F below.
func DefaultScale() *Scale {
	return &Scale{
		bands: []config.GradeBand{
			{Letter: "A", Min: 75},
			{Letter: "B", Min: 65},
			{Letter: "C", Min: 50},
			{Letter: "D", Min: 45},
			{Letter: "E", Min: 40},
		},
		fallback: "F",
	}
}

func (s *Scale) GradeFor(score int) string {
	for _, band := range s.bands {
		if score >= band.Min {
			return band.Letter
		}
	}
	return s.fallback
}
