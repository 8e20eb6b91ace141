package api

// UploadForm is the multipart document-upload request. MappingJSON carries
// the actor's manual overrides as a JSON object of placeholder to header;
// an empty header value clears the entry.
type UploadForm struct {
	Session     string `form:"session" validate:"required"`
	Term        string `form:"term" validate:"required"`
	ClassID     string `form:"class_id" validate:"required"`
	SheetName   string `form:"sheet_name"`
	MappingJSON string `form:"mapping"`
}

// InspectForm is the preview request: same files, nothing persisted.
type InspectForm struct {
	SheetName string `form:"sheet_name"`
}

type CreateUserRequest struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name" validate:"required"`
	Surname         string   `json:"surname" validate:"required"`
	MiddleName      *string  `json:"middle_name"`
	Email           *string  `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	Role            string   `json:"role" validate:"required,oneof=student staff head_of_section admin"`
	SchoolSection   *string  `json:"school_section"`
	ClassID         *string  `json:"class_id"`
	RollNumber      *string  `json:"roll_number"`
	Department      *string  `json:"department"`
	Title           *string  `json:"title"`
	AssignedClasses []string `json:"assigned_classes"`
	Section         *string  `json:"section"`
}

type CreateClassRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	DisplayLevel string `json:"display_level"`
	Section      string `json:"section" validate:"required"`
}

type CreateSubjectRequest struct {
	ID            string `json:"id"`
	Title         string `json:"title" validate:"required"`
	Code          string `json:"code" validate:"required"`
	SchoolSection string `json:"school_section" validate:"required"`
}
