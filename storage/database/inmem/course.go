package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses = append(repo.db.courses, &crs)
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	return courses, nil
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var courses []course.Course
	for _, crs := range repo.db.courses {
		if crs.TeacherID == teacherID {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.ID == id {
			return *crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, crs := range repo.db.courses {
		if crs.ID == id {
			repo.db.deleteCourse(id)
			return nil
		}
	}
	return course.ErrNotFound
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// uniqueness is checked under the same lock as the insert
	for _, e := range repo.db.enrollments {
		if e.StudentID == enr.StudentID && e.CourseID == enr.CourseID {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
	}
	enr.ID = uuid.New().String()
	repo.db.enrollments = append(repo.db.enrollments, &enr)
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (course.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return course.Enrollment{}, course.ErrNotEnrolled
}

func (repo *courseRepository) DeleteEnrollment(ctx context.Context, studentID, courseID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.CourseID == courseID {
			repo.db.enrollments = append(repo.db.enrollments[:i], repo.db.enrollments[i+1:]...)
			return nil
		}
	}
	return course.ErrNotEnrolled
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var courses []course.Course
	for _, enr := range repo.db.enrollments {
		if enr.StudentID != studentID {
			continue
		}
		for _, crs := range repo.db.courses {
			if crs.ID == enr.CourseID {
				courses = append(courses, *crs)
				break
			}
		}
	}
	return courses, nil
}

func (repo *courseRepository) QueryEnrolledStudents(ctx context.Context, courseID string) ([]course.EnrolledStudent, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var students []course.EnrolledStudent
	for _, enr := range repo.db.enrollments {
		if enr.CourseID != courseID {
			continue
		}
		for _, usr := range repo.db.users {
			if usr.ID == enr.StudentID {
				students = append(students, course.EnrolledStudent{
					ID:         usr.ID,
					Name:       usr.Name,
					Email:      usr.Email,
					EnrolledAt: enr.EnrolledAt,
				})
				break
			}
		}
	}
	return students, nil
}
