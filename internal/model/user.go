package model

import "time"

type Role string

const (
	RoleStudent       Role = "student"
	RoleStaff         Role = "staff"
	RoleHeadOfSection Role = "head_of_section"
	RoleAdmin         Role = "admin"
)

// User is a single record for every role; role-specific fields are pointers
// or slices left empty for roles they do not apply to. A head_of_section must
// always carry a non-empty Section.
type User struct {
	ID           string    `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	MiddleName   *string   `json:"middle_name,omitempty" db:"middle_name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Student fields.
	SchoolSection *string `json:"school_section,omitempty" db:"school_section"`
	ClassID       *string `json:"class_id,omitempty" db:"class_id"`
	RollNumber    *string `json:"roll_number,omitempty" db:"roll_number"`

	// Staff fields. Section doubles as the head_of_section section.
	Department      *string  `json:"department,omitempty" db:"department"`
	Title           *string  `json:"title,omitempty" db:"title"`
	AssignedClasses []string `json:"assigned_classes,omitempty"`
	Section         *string  `json:"section,omitempty" db:"section"`
}

func (u *User) FullName() string {
	if u.MiddleName != nil && *u.MiddleName != "" {
		return u.FirstName + " " + *u.MiddleName + " " + u.Surname
	}
	return u.FirstName + " " + u.Surname
}

// IsAssignedTo reports whether a staff member is class master of classID.
func (u *User) IsAssignedTo(classID string) bool {
	for _, id := range u.AssignedClasses {
		if id == classID {
			return true
		}
	}
	return false
}
