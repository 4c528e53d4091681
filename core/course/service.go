package course

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("course not found")
	ErrNotOwner        = core.NewPermissionDeniedError("not your course")
	ErrAlreadyEnrolled = core.NewConflictError("already enrolled in this course")
	ErrNotEnrolled     = core.NewNotFoundError("not enrolled in this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// DeleteCourse cascades to the course's enrollments, assignments and
		// those assignments' submissions.
		DeleteCourse(ctx context.Context, id string) error

		// CreateEnrollment relies on the store's unique (student_id, course_id)
		// constraint; returns ErrAlreadyEnrolled on a duplicate pair.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, studentID, courseID string) error
		QueryCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
		QueryEnrolledStudents(ctx context.Context, courseID string) ([]EnrolledStudent, error)
	}

	Service interface {
		Create(ctx context.Context, teacher user.User, nc NewCourse) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		QueryByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Delete(ctx context.Context, teacherID, courseID string) error

		Enroll(ctx context.Context, student user.User, courseID string) (Enrollment, error)
		Unenroll(ctx context.Context, studentID, courseID string) error
		QueryEnrolled(ctx context.Context, studentID string) ([]Course, error)
		QueryEnrolledStudents(ctx context.Context, teacherID, courseID string) ([]EnrolledStudent, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, teacher user.User, nc NewCourse) (Course, error) {
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *service) QueryByTeacher(ctx context.Context, teacherID string) ([]Course, error) {
	return svc.repo.QueryCoursesByTeacher(ctx, teacherID)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Delete(ctx context.Context, teacherID, courseID string) error {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if crs.TeacherID != teacherID {
		return ErrNotOwner
	}
	return svc.repo.DeleteCourse(ctx, courseID)
}

func (svc *service) Enroll(ctx context.Context, student user.User, courseID string) (Enrollment, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	enr := Enrollment{
		StudentID:  student.ID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *service) Unenroll(ctx context.Context, studentID, courseID string) error {
	return svc.repo.DeleteEnrollment(ctx, studentID, courseID)
}

func (svc *service) QueryEnrolled(ctx context.Context, studentID string) ([]Course, error) {
	return svc.repo.QueryCoursesByStudent(ctx, studentID)
}

func (svc *service) QueryEnrolledStudents(ctx context.Context, teacherID, courseID string) ([]EnrolledStudent, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs.TeacherID != teacherID {
		return nil, ErrNotOwner
	}
	return svc.repo.QueryEnrolledStudents(ctx, courseID)
}
