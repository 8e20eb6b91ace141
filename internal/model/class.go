package model

import "time"

// SchoolClass is one class group within a section. DisplayLevel is a coarse
// grouping label for listing screens, e.g. "Primary" or "Secondary".
type SchoolClass struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	DisplayLevel string    `json:"display_level" db:"display_level"`
	Section      string    `json:"section" db:"section"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Subject belongs to exactly one section. A class's applicable subjects are
// all subjects whose SchoolSection equals the class's Section.
type Subject struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Code          string    `json:"code" db:"code"`
	SchoolSection string    `json:"school_section" db:"school_section"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
