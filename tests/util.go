package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

// NewConfig returns a Config suitable for tests: no external services, a
// static secret and short deltas.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:                     false,
		TestMode:                  true,
		Env:                       "test",
		AppName:                   "Darasa",
		SecretKey:                 "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm&xc6",
		FrontendBaseURL:           "http://localhost:8080",
		DefaultFromEmail:          mail.Address{Name: "Darasa", Address: "noreply@test.cd"},
		PasswordResetTimeoutDelta: 72 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        24 * time.Hour,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, teacher user.User, title, description string) course.Course {
	t.Helper()

	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:       title,
		Description: description,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func Enroll(t *testing.T, repo course.Repository, student user.User, crs course.Course) course.Enrollment {
	t.Helper()

	enr, err := repo.CreateEnrollment(context.Background(), course.Enrollment{
		StudentID:  student.ID,
		CourseID:   crs.ID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	crs course.Course,
	title, dueDate string,
	totalPoints int,
) assignment.Assignment {
	t.Helper()

	a, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		CourseID:    crs.ID,
		Title:       title,
		Description: title + " description",
		DueDate:     dueDate,
		TotalPoints: totalPoints,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

func CreateSubmission(
	t *testing.T,
	repo assignment.Repository,
	a assignment.Assignment,
	student user.User,
	fileURL string,
) assignment.Submission {
	t.Helper()

	sub, err := repo.CreateSubmission(context.Background(), assignment.Submission{
		AssignmentID: a.ID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		FileURL:      fileURL,
		SubmittedAt:  time.Now().UTC(),
		Status:       assignment.StatusSubmitted,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}
