package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/class"
	testutil "github.com/Vasu3050/schoolsite/tests"
)

func Test_classApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	adminToken := getToken(t, admin)

	body := func(grade, section, year string) []byte {
		return []byte(fmt.Sprintf(
			`{"grade": %q, "section": %q, "academicYear": %q, "classTeachers": [%q]}`,
			grade, section, year, teacher.ID,
		))
	}

	tests := []httpTest{
		{name: "auth required", body: body("5th", "b", "2025-2026"), wantCode: http.StatusUnauthorized},
		{name: "admin required", token: getToken(t, teacher), body: body("5th", "b", "2025-2026"), wantCode: http.StatusForbidden},
		{name: "bad academic year", token: adminToken, body: body("5th", "b", "2025"), wantCode: http.StatusBadRequest},
		{name: "no class teachers", token: adminToken, body: []byte(`{"grade": "5th", "section": "b", "academicYear": "2025-2026"}`), wantCode: http.StatusBadRequest},
		{
			name: "duplicate subjects", token: adminToken,
			body: []byte(fmt.Sprintf(
				`{"grade": "5th", "section": "b", "academicYear": "2025-2026", "classTeachers": [%q], "subjectTeachers": [{"subject": "Math", "teacher": %q}, {"subject": "math", "teacher": %q}]}`,
				teacher.ID, teacher.ID, teacher.ID,
			)),
			wantCode: http.StatusBadRequest,
		},
		{name: "created", token: adminToken, body: body("5th", "b", "2025-2026"), wantCode: http.StatusCreated},
		{name: "identity conflict", token: adminToken, body: body("5th", "B", "2025-2026"), wantCode: http.StatusConflict, wantMsg: class.ErrExists.Error()},
		{name: "same grade other section", token: adminToken, body: body("5th", "c", "2025-2026"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/classes", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var c class.Class
				decodeData(t, rec, &c)
				assert.Equal(t, admin.ID, c.CreatedBy)
				assert.Equal(t, class.StatusActive, c.Status)
				assert.Equal(t, c.Grade+c.Section+"-"+c.AcademicYear, c.Code)
			}
		})
	}
}

func Test_classApi_myClasses(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	classTeacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	subjTeacher := testutil.CreateAccount(t, accRepo, "Sam Teacher", "sam@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	idle := testutil.CreateAccount(t, accRepo, "Idle Teacher", "idle@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)

	testutil.CreateStudent(t, stdRepo, "sid01", "Asha Rao", "5th", "b")
	testutil.CreateStudent(t, stdRepo, "sid02", "Vikram Naik", "5th", "b")
	testutil.CreateStudent(t, stdRepo, "sid03", "Kiran Naik", "5th", "c")

	body := []byte(fmt.Sprintf(
		`{"grade": "5th", "section": "b", "academicYear": "2025-2026", "classTeachers": [%q], "subjectTeachers": [{"subject": "Math", "teacher": %q}]}`,
		classTeacher.ID, subjTeacher.ID,
	))
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/classes", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	get := func(tok string) []class.MyClass {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/classes/mine", tok)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out []class.MyClass
		decodeData(t, rec, &out)
		return out
	}

	// class teacher sees the class with its roster and full permissions
	mine := get(getToken(t, classTeacher))
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Roster, 2)
	assert.True(t, mine[0].Roster[0].Permissions.CanMarkAttendance)
	assert.Equal(t, "Mary Teacher", mine[0].ClassTeachers[0].Name)

	// subject teachers are included too
	mine = get(getToken(t, subjTeacher))
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Roster[0].Permissions.CanMarkAttendance)

	// unrelated teachers see nothing
	assert.Empty(t, get(getToken(t, idle)))
}

func Test_classApi_toggleStatus(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	adminToken := getToken(t, admin)

	body := []byte(fmt.Sprintf(`{"grade": "5th", "section": "b", "academicYear": "2025-2026", "classTeachers": [%q]}`, teacher.ID))
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/classes", adminToken, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c class.Class
	decodeData(t, rec, &c)

	toggle := func() class.Class {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/classes/"+c.ID+"/status", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out class.Class
		decodeData(t, rec, &out)
		return out
	}

	assert.Equal(t, class.StatusArchived, toggle().Status)
	assert.Equal(t, class.StatusActive, toggle().Status)

	// teachers cannot toggle
	req, rec = newAuthRequest(http.MethodPost, "/api/v1/classes/"+c.ID+"/status", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
