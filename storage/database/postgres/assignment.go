package pgrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assignments (id, course_id, title, description, due_date, total_points, file_url, created_at)
		VALUES (:id, :course_id, :title, :description, :due_date, :total_points, :file_url, :created_at)`,
		a,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var a assignment.Assignment
	err := repo.db.GetContext(ctx, &a, `SELECT * FROM assignments WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment by id")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]assignment.Assignment, error) {
	var assignments []assignment.Assignment
	err := repo.db.SelectContext(ctx, &assignments,
		`SELECT * FROM assignments WHERE course_id = $1 ORDER BY created_at`, courseID)
	return assignments, errors.Wrap(err, "querying assignments by course")
}

// DeleteAssignment removes the assignment; its submissions go with it via the
// schema's ON DELETE CASCADE.
func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	sub.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO submissions (id, assignment_id, student_id, student_name, file_url, submitted_at, grade, feedback, status)
		VALUES (:id, :assignment_id, :student_id, :student_name, :file_url, :submitted_at, :grade, :feedback, :status)`,
		sub,
	)
	if err != nil {
		return assignment.Submission{}, mapConflict(errors.Wrap(err, "creating submission"), assignment.ErrAlreadySubmitted)
	}
	return sub, nil
}

func (repo *assignmentRepository) GetSubmissionByID(ctx context.Context, id string) (assignment.Submission, error) {
	var sub assignment.Submission
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM submissions WHERE id = $1`, id)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "getting submission by id")
	}
	return sub, nil
}

func (repo *assignmentRepository) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]assignment.Submission, error) {
	var subs []assignment.Submission
	err := repo.db.SelectContext(ctx, &subs,
		`SELECT * FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at`, assignmentID)
	return subs, errors.Wrap(err, "querying submissions by assignment")
}

func (repo *assignmentRepository) QuerySubmissionsByStudent(ctx context.Context, assignmentID, studentID string) ([]assignment.Submission, error) {
	var subs []assignment.Submission
	err := repo.db.SelectContext(ctx, &subs,
		`SELECT * FROM submissions WHERE assignment_id = $1 AND student_id = $2 ORDER BY submitted_at`,
		assignmentID, studentID)
	return subs, errors.Wrap(err, "querying submissions by student")
}

func (repo *assignmentRepository) GradeSubmission(ctx context.Context, id string, grade int, feedback string) (assignment.Submission, error) {
	var sub assignment.Submission
	err := repo.db.GetContext(ctx, &sub, `
		UPDATE submissions
		SET grade = $2, feedback = $3, status = $4
		WHERE id = $1
		RETURNING *`,
		id, grade, feedback, assignment.StatusGraded,
	)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "grading submission")
	}
	return sub, nil
}
