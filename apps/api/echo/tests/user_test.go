package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/tests"
)

const goodPwd = "G00d.Pa55word!"

func Test_authApi_register(t *testing.T) {
	resetDB(t)

	testutil.CreateUser(t, usrRepo, "Dup", "dup@test.cd", "", user.RoleStudent)

	tests := []httpTest{
		{
			name: "missing fields", body: marchallObj(t, map[string]string{"password": goodPwd}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":  "this field is required",
				"email": "this field is required",
				"role":  "this field is required",
			}),
		},
		{
			name: "invalid role",
			body: marchallObj(t, map[string]string{
				"name": "Jane Doe", "email": "jane@test.cd", "password": goodPwd, "role": "admin",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of [teacher student]"}),
		},
		{
			name: "weak password",
			body: marchallObj(t, map[string]string{
				"name": "Jane Doe", "email": "jane@test.cd", "password": "password1", "role": user.RoleTeacher,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "duplicate email",
			body: marchallObj(t, map[string]string{
				"name": "Dup II", "email": "dup@test.cd", "password": goodPwd, "role": user.RoleStudent,
			}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a user with this email already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("register then validate token", func(t *testing.T) {
		body := marchallObj(t, map[string]string{
			"name": "Jane Doe", "email": "jane@test.cd", "password": goodPwd, "role": user.RoleTeacher,
		})
		req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var res struct {
			AccessToken string    `json:"access_token"`
			TokenType   string    `json:"token_type"`
			User        user.User `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.TokenType != "bearer" {
			t.Errorf("token_type = %q; want %q", res.TokenType, "bearer")
		}
		if res.AccessToken == "" {
			t.Fatal("empty access_token")
		}
		if res.User.Email != "jane@test.cd" || res.User.Role != user.RoleTeacher {
			t.Errorf("unexpected user: %+v", res.User)
		}

		// welcome email sent
		msgs := emailsvc.GetSentMessages()
		if len(msgs) == 0 || msgs[len(msgs)-1].Subject != "Welcome!" {
			t.Errorf("expected a welcome email, got %d messages", len(msgs))
		}

		// token works
		req, rec = newAuthRequest(http.MethodGet, "/api/auth/me", res.AccessToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, res.User)}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_authApi_login(t *testing.T) {
	resetDB(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", goodPwd, user.RoleStudent)

	tests := []httpTest{
		{
			name: "missing fields", body: marchallObj(t, map[string]string{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name:     "unknown email",
			body:     marchallObj(t, map[string]string{"email": "lol@test.cd", "password": goodPwd}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, map[string]string{"email": student.Email, "password": "Wr0ng.Pa55word!"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login ok", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"email": student.Email, "password": goodPwd})
		req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var res struct {
			AccessToken string    `json:"access_token"`
			TokenType   string    `json:"token_type"`
			User        user.User `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.AccessToken == "" || res.TokenType != "bearer" || res.User.ID != student.ID {
			t.Errorf("unexpected response: %+v", res)
		}

		// lastLogin recorded
		refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if !refreshed.LastLogin.Valid {
			t.Error("lastLogin not set")
		}
	})
}

func Test_authApi_me(t *testing.T) {
	resetDB(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get profile", token: getToken(t, teacher), wantCode: http.StatusOK, wantData: marchallObj(t, teacher)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/auth/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("expired token rejected", func(t *testing.T) {
		now := time.Now()
		claims := echoapi.GetUserClaims(conf, teacher)
		claims.StandardClaims = jwt.StandardClaims{
			Subject:   teacher.ID,
			ExpiresAt: now.Add(-time.Hour).Unix(),
			IssuedAt:  now.Add(-25 * time.Hour).Unix(),
		}
		token, err := echoapi.GenerateToken(conf, claims)
		if err != nil {
			t.Fatalf("GenerateToken() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodGet, "/api/auth/me", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})
}

func Test_authApi_updateProfile(t *testing.T) {
	resetDB(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", goodPwd, user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent)
	crs := testutil.CreateCourse(t, crsRepo, teacher, "Chemistry 101", "Intro")
	a := testutil.CreateAssignment(t, asgRepo, crs, "Lab 1", "2026-09-30", 100)
	testutil.Enroll(t, crsRepo, student, crs)
	sub := testutil.CreateSubmission(t, asgRepo, a, student, "https://files.test.cd/lab1.pdf")

	t.Run("weak password rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"password": "password1"})
		req, rec := newAuthRequest(http.MethodPut, "/api/auth/profile", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("teacher rename backfills courses", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Prof. Teacher"})
		req, rec := newAuthRequest(http.MethodPut, "/api/auth/profile", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		refreshed, err := crsRepo.GetCourseByID(context.Background(), crs.ID)
		if err != nil {
			t.Fatalf("GetCourseByID() failed: %v", err)
		}
		if refreshed.TeacherName != "Prof. Teacher" {
			t.Errorf("TeacherName = %q; want %q", refreshed.TeacherName, "Prof. Teacher")
		}
	})

	t.Run("student rename backfills submissions", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Big Hero"})
		req, rec := newAuthRequest(http.MethodPut, "/api/auth/profile", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		refreshed, err := asgRepo.GetSubmissionByID(context.Background(), sub.ID)
		if err != nil {
			t.Fatalf("GetSubmissionByID() failed: %v", err)
		}
		if refreshed.StudentName != "Big Hero" {
			t.Errorf("StudentName = %q; want %q", refreshed.StudentName, "Big Hero")
		}
	})

	t.Run("password change", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"password": "N3w.Pa55word!"})
		req, rec := newAuthRequest(http.MethodPut, "/api/auth/profile", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		refreshed, err := usrRepo.GetUserByID(context.Background(), teacher.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if refreshed.CheckPassword("N3w.Pa55word!") != nil {
			t.Error("new password not set")
		}
	})
}

var resetLinkRegex = regexp.MustCompile(`/password-reset/([^/\s]+)/(\S+)`)

func Test_authApi_passwordReset(t *testing.T) {
	resetDB(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", goodPwd, user.RoleStudent)

	successMsg := "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."

	t.Run("unknown email gets same answer", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"email": "lol@test.cd"})
		req, rec := newRequest(http.MethodPost, "/api/auth/password-reset", body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"success": successMsg})}
		checkCodeAndData(t, tt, rec)

		if n := len(emailsvc.GetSentMessages()); n != 0 {
			t.Errorf("expected no email, got %d", n)
		}
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"uid": "lol", "token": "lol", "password": "N3w.Pa55word!"})
		req, rec := newRequest(http.MethodPost, "/api/auth/password-reset-confirm", body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid token"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("reset round trip", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"email": student.Email})
		req, rec := newRequest(http.MethodPost, "/api/auth/password-reset", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		msgs := emailsvc.GetSentMessages()
		if len(msgs) == 0 {
			t.Fatal("no reset email sent")
		}
		match := resetLinkRegex.FindStringSubmatch(msgs[len(msgs)-1].TextContent)
		if match == nil {
			t.Fatalf("no reset link in email: %q", msgs[len(msgs)-1].TextContent)
		}
		uid, token := match[1], match[2]

		// weak password rejected, token left intact
		body = marchallObj(t, map[string]string{"uid": uid, "token": token, "password": "password1"})
		req, rec = newRequest(http.MethodPost, "/api/auth/password-reset-confirm", body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		}, rec)

		// good password accepted
		body = marchallObj(t, map[string]string{"uid": uid, "token": token, "password": "N3w.Pa55word!"})
		req, rec = newRequest(http.MethodPost, "/api/auth/password-reset-confirm", body)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"success": "Password has been reset with the new password."}),
		}
		checkCodeAndData(t, tt, rec)

		// old password no longer works; new one does
		refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if refreshed.CheckPassword(goodPwd) == nil {
			t.Error("old password still valid")
		}
		if refreshed.CheckPassword("N3w.Pa55word!") != nil {
			t.Error("new password not set")
		}

		// token is single-use: the password change invalidates it
		body = marchallObj(t, map[string]string{"uid": uid, "token": token, "password": "An0ther.Pa55word!"})
		req, rec = newRequest(http.MethodPost, "/api/auth/password-reset-confirm", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	resetDB(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent)

	now := time.Now()
	unrefreshableClaims := echoapi.GetUserClaims(conf, student)
	unrefreshableClaims.OrigIssuedAt = now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix() // older than threshold
	unrefreshableToken, err := echoapi.GenerateToken(conf, unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/auth/token-refresh", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Token refreshed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/auth/token-refresh", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var res struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if res.AccessToken == "" || res.TokenType != "bearer" {
			t.Errorf("unexpected response: %+v", res)
		}

		// new token works
		req, rec = newAuthRequest(http.MethodGet, "/api/auth/me", res.AccessToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
		}
	})
}
