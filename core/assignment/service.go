package assignment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("assignment not found")
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
	ErrNotOwner           = core.NewPermissionDeniedError("not your assignment")
	ErrNotEnrolled        = core.NewPermissionDeniedError("not enrolled in this course")
	ErrAlreadySubmitted   = core.NewConflictError("assignment already submitted")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		// QueryAssignmentsByCourse returns the course's assignments in insertion order.
		QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		// DeleteAssignment cascades to the assignment's submissions.
		DeleteAssignment(ctx context.Context, id string) error

		// CreateSubmission relies on the store's unique (assignment_id, student_id)
		// constraint; returns ErrAlreadySubmitted on a duplicate pair.
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)
		QuerySubmissionsByStudent(ctx context.Context, assignmentID, studentID string) ([]Submission, error)
		// GradeSubmission sets grade, feedback and status=graded.
		GradeSubmission(ctx context.Context, id string, grade int, feedback string) (Submission, error)
	}

	Service interface {
		Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error)
		GetByID(ctx context.Context, id string) (Assignment, error)
		QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		Delete(ctx context.Context, teacherID, assignmentID string) error

		Submit(ctx context.Context, student user.User, assignmentID string, ns NewSubmission) (Submission, error)
		QuerySubmissions(ctx context.Context, caller user.User, assignmentID string) ([]Submission, error)
		Grade(ctx context.Context, teacherID, submissionID string, gs GradeSubmission) (Submission, error)
	}

	service struct {
		repo       Repository
		courseRepo course.Repository
		usrRepo    user.Repository
		mailSvc    core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courseRepo course.Repository, usrRepo user.Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:       repo,
		courseRepo: courseRepo,
		usrRepo:    usrRepo,
		mailSvc:    mailSvc,
	}
}

// getOwnedCourse loads a course and ensures the teacher owns it.
func (svc *service) getOwnedCourse(ctx context.Context, teacherID, courseID string, ownerErr error) (course.Course, error) {
	crs, err := svc.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return course.Course{}, err
	}
	if crs.TeacherID != teacherID {
		return course.Course{}, ownerErr
	}
	return crs, nil
}

func (svc *service) Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error) {
	if _, err := svc.getOwnedCourse(ctx, teacherID, na.CourseID, course.ErrNotOwner); err != nil {
		return Assignment{}, err
	}
	a := Assignment{
		CourseID:    na.CourseID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		TotalPoints: na.TotalPoints,
		CreatedAt:   time.Now().UTC(),
	}
	if na.FileURL != "" {
		a.FileURL = null.StringFrom(na.FileURL)
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *service) QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	if _, err := svc.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentsByCourse(ctx, courseID)
}

func (svc *service) Delete(ctx context.Context, teacherID, assignmentID string) error {
	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if _, err = svc.getOwnedCourse(ctx, teacherID, a.CourseID, ErrNotOwner); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(ctx, assignmentID)
}

func (svc *service) Submit(ctx context.Context, student user.User, assignmentID string, ns NewSubmission) (Submission, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	if _, err = svc.courseRepo.GetEnrollment(ctx, student.ID, a.CourseID); err != nil {
		if errors.Cause(err) == course.ErrNotEnrolled {
			return Submission{}, ErrNotEnrolled
		}
		return Submission{}, err
	}
	sub := Submission{
		AssignmentID: assignmentID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		FileURL:      ns.FileURL,
		SubmittedAt:  time.Now().UTC(),
		Status:       StatusSubmitted,
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *service) QuerySubmissions(ctx context.Context, caller user.User, assignmentID string) ([]Submission, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if caller.IsTeacher() {
		if _, err = svc.getOwnedCourse(ctx, caller.ID, a.CourseID, ErrNotOwner); err != nil {
			return nil, err
		}
		return svc.repo.QuerySubmissionsByAssignment(ctx, assignmentID)
	}
	// students only see their own submission
	return svc.repo.QuerySubmissionsByStudent(ctx, assignmentID, caller.ID)
}

func (svc *service) Grade(ctx context.Context, teacherID, submissionID string, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	a, err := svc.repo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	crs, err := svc.getOwnedCourse(ctx, teacherID, a.CourseID, ErrNotOwner)
	if err != nil {
		return Submission{}, err
	}

	grade := *gs.Grade
	if grade < 0 || grade > a.TotalPoints {
		return Submission{}, core.NewValidationError(fmt.Errorf("grade must be between 0 and %d", a.TotalPoints))
	}

	sub, err = svc.repo.GradeSubmission(ctx, submissionID, grade, gs.Feedback)
	if err != nil {
		return Submission{}, err
	}
	svc.sendGradedMail(ctx, sub, a, crs)
	return sub, nil
}

func (svc *service) sendGradedMail(ctx context.Context, sub Submission, a Assignment, crs course.Course) {
	student, err := svc.usrRepo.GetUserByID(ctx, sub.StudentID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      fmt.Sprintf("%q has been graded", a.Title),
		TemplateName: "submission-graded",
		TemplateData: struct {
			StudentName     string
			AssignmentTitle string
			CourseTitle     string
			Grade           int
			TotalPoints     int
			Feedback        string
		}{student.Name, a.Title, crs.Title, sub.Grade.Int, a.TotalPoints, sub.Feedback.String},
	})
}
