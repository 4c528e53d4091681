package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Submission statuses
const (
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

type Assignment struct {
	ID          string      `json:"id" db:"id"`
	CourseID    string      `json:"course_id" db:"course_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	DueDate     string      `json:"due_date" db:"due_date"` // YYYY-MM-DD
	TotalPoints int         `json:"total_points" db:"total_points"`
	FileURL     null.String `json:"file_url" db:"file_url"` // out-of-band storage reference
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
}

type Submission struct {
	ID           string      `json:"id" db:"id"`
	AssignmentID string      `json:"assignment_id" db:"assignment_id"`
	StudentID    string      `json:"student_id" db:"student_id"`
	StudentName  string      `json:"student_name" db:"student_name"` // denormalized; backfilled on rename
	FileURL      string      `json:"file_url" db:"file_url"`
	SubmittedAt  time.Time   `json:"submitted_at" db:"submitted_at"` // UTC
	Grade        null.Int    `json:"grade" db:"grade"`
	Feedback     null.String `json:"feedback" db:"feedback"`
	Status       string      `json:"status" db:"status"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,dateonly"`
	TotalPoints int    `json:"total_points" validate:"required,gt=0"`
	FileURL     string `json:"file_url"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.CourseID = core.CleanString(na.CourseID)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.DueDate = core.CleanString(na.DueDate)
	na.FileURL = core.CleanString(na.FileURL)
	return validate.Struct(na)
}

// NewSubmission contains a student's response artifact for an Assignment.
type NewSubmission struct {
	FileURL string `json:"file_url" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.FileURL = core.CleanString(ns.FileURL)
	return validate.Struct(ns)
}

// GradeSubmission records a grade and feedback on a Submission.
// Grade is a pointer so that an explicit 0 passes `required`.
type GradeSubmission struct {
	Grade    *int   `json:"grade" validate:"required"`
	Feedback string `json:"feedback"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Feedback = core.CleanString(gs.Feedback)
	return validate.Struct(gs)
}
