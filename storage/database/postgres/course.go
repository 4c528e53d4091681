package pgrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO courses (id, title, description, teacher_id, teacher_name, created_at)
		VALUES (:id, :title, :description, :teacher_id, :teacher_name, :created_at)`,
		crs,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	err := repo.db.SelectContext(ctx, &courses, `SELECT * FROM courses ORDER BY created_at`)
	return courses, errors.Wrap(err, "querying courses")
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	var courses []course.Course
	err := repo.db.SelectContext(ctx, &courses, `SELECT * FROM courses WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
	return courses, errors.Wrap(err, "querying courses by teacher")
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM courses WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by id")
	}
	return crs, nil
}

// DeleteCourse removes the course; enrollments, assignments and their
// submissions go with it via the schema's ON DELETE CASCADE.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	enr.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollments (id, student_id, course_id, enrolled_at)
		VALUES (:id, :student_id, :course_id, :enrolled_at)`,
		enr,
	)
	if err != nil {
		return course.Enrollment{}, mapConflict(errors.Wrap(err, "creating enrollment"), course.ErrAlreadyEnrolled)
	}
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (course.Enrollment, error) {
	var enr course.Enrollment
	err := repo.db.GetContext(ctx, &enr,
		`SELECT * FROM enrollments WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrNotEnrolled
		}
		return course.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) DeleteEnrollment(ctx context.Context, studentID, courseID string) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotEnrolled
	}
	return nil
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	var courses []course.Course
	err := repo.db.SelectContext(ctx, &courses, `
		SELECT c.*
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at`,
		studentID,
	)
	return courses, errors.Wrap(err, "querying courses by student")
}

func (repo *courseRepository) QueryEnrolledStudents(ctx context.Context, courseID string) ([]course.EnrolledStudent, error) {
	var students []course.EnrolledStudent
	err := repo.db.SelectContext(ctx, &students, `
		SELECT u.id, u.name, u.email, e.enrolled_at
		FROM users u
		JOIN enrollments e ON e.student_id = u.id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at`,
		courseID,
	)
	return students, errors.Wrap(err, "querying enrolled students")
}
