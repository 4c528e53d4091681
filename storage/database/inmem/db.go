// Package inmemdb implements the domain repositories on slices guarded by a
// single lock. It mirrors the Postgres schema's behavior: uniqueness checked
// under the write lock, cascade deletes applied explicitly, insertion order
// preserved. Used by the API test suite and local development.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type DB struct {
	mu sync.RWMutex

	users       []*user.User
	courses     []*course.Course
	enrollments []*course.Enrollment
	assignments []*assignment.Assignment
	submissions []*assignment.Submission
}

func NewDB() *DB {
	return &DB{}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = nil
	db.courses = nil
	db.enrollments = nil
	db.assignments = nil
	db.submissions = nil
}

// deleteCourse removes a course and cascades to its enrollments, assignments
// and those assignments' submissions. Callers must hold the write lock.
func (db *DB) deleteCourse(id string) {
	courses := db.courses[:0]
	for _, crs := range db.courses {
		if crs.ID != id {
			courses = append(courses, crs)
		}
	}
	db.courses = courses

	enrollments := db.enrollments[:0]
	for _, enr := range db.enrollments {
		if enr.CourseID != id {
			enrollments = append(enrollments, enr)
		}
	}
	db.enrollments = enrollments

	assignments := db.assignments[:0]
	for _, a := range db.assignments {
		if a.CourseID == id {
			db.deleteSubmissionsByAssignment(a.ID)
		} else {
			assignments = append(assignments, a)
		}
	}
	db.assignments = assignments
}

// deleteAssignment removes an assignment and cascades to its submissions.
// Callers must hold the write lock.
func (db *DB) deleteAssignment(id string) {
	assignments := db.assignments[:0]
	for _, a := range db.assignments {
		if a.ID != id {
			assignments = append(assignments, a)
		}
	}
	db.assignments = assignments
	db.deleteSubmissionsByAssignment(id)
}

func (db *DB) deleteSubmissionsByAssignment(assignmentID string) {
	submissions := db.submissions[:0]
	for _, sub := range db.submissions {
		if sub.AssignmentID != assignmentID {
			submissions = append(submissions, sub)
		}
	}
	db.submissions = submissions
}
