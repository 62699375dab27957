package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/student"
	testutil "github.com/Vasu3050/schoolsite/tests"
)

func Test_studentApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized},
		{
			name: "admin required", token: getToken(t, teacher),
			body:     []byte(`{"name": "Asha Rao", "dob": "2019-04-01T00:00:00Z", "grade": "2nd", "division": "a"}`),
			wantCode: http.StatusForbidden,
		},
		{
			name: "unknown grade", token: adminToken,
			body:     []byte(`{"name": "Asha Rao", "dob": "2019-04-01T00:00:00Z", "grade": "13th", "division": "a"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "first student gets sid01", token: adminToken,
			body:     []byte(`{"name": "Asha Rao", "dob": "2019-04-01T00:00:00Z", "grade": "2nd", "division": "a"}`),
			wantCode: http.StatusCreated, extra: "sid01",
		},
		{
			name: "codes are sequential", token: adminToken,
			body:     []byte(`{"name": "Vikram Naik", "dob": "2018-11-20T00:00:00Z", "grade": "3rd", "division": "B"}`),
			wantCode: http.StatusCreated, extra: "sid02",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/students", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var st student.Student
				decodeData(t, rec, &st)
				assert.Equal(t, tt.extra, st.Code)
			}
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)

	own := testutil.CreateStudent(t, stdRepo, "sid01", "Asha Rao", "2nd", "a", parent.ID)
	other := testutil.CreateStudent(t, stdRepo, "sid02", "Vikram Naik", "3rd", "b")

	tests := []httpTest{
		{name: "admin", path: "/api/v1/students/" + other.ID, token: getToken(t, admin), wantCode: http.StatusOK},
		{name: "teacher", path: "/api/v1/students/" + other.ID, token: getToken(t, teacher), wantCode: http.StatusOK},
		{name: "parent own child", path: "/api/v1/students/" + own.ID, token: getToken(t, parent), wantCode: http.StatusOK},
		{name: "parent other child hidden", path: "/api/v1/students/" + other.ID, token: getToken(t, parent), wantCode: http.StatusNotFound},
		{name: "unknown id", path: "/api/v1/students/nope", token: getToken(t, admin), wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)
		})
	}
}

func Test_studentApi_update(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)
	own := testutil.CreateStudent(t, stdRepo, "sid01", "Asha Rao", "2nd", "a", parent.ID)
	other := testutil.CreateStudent(t, stdRepo, "sid02", "Vikram Naik", "3rd", "b")

	tests := []httpTest{
		{
			name: "empty update", path: "/api/v1/students/" + own.ID, token: getToken(t, admin),
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "parent renames own child", path: "/api/v1/students/" + own.ID, token: getToken(t, parent),
			body: []byte(`{"name": "Asha R Rao"}`), wantCode: http.StatusOK,
		},
		{
			name: "parent cannot move grades", path: "/api/v1/students/" + own.ID, token: getToken(t, parent),
			body: []byte(`{"grade": "3rd"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "parent cannot touch other children", path: "/api/v1/students/" + other.ID, token: getToken(t, parent),
			body: []byte(`{"name": "Nope"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "admin moves grades", path: "/api/v1/students/" + own.ID, token: getToken(t, admin),
			body: []byte(`{"grade": "3rd", "division": "b"}`), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)
		})
	}
}

func Test_studentApi_childrenAndGuardians(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)

	st1 := testutil.CreateStudent(t, stdRepo, "sid01", "Asha Rao", "2nd", "a", parent.ID)
	testutil.CreateStudent(t, stdRepo, "sid02", "Arun Rao", "4th", "b", parent.ID)
	testutil.CreateStudent(t, stdRepo, "sid03", "Vikram Naik", "3rd", "b")

	// children: parent sees only their own
	req, rec := newAuthRequest(http.MethodGet, "/api/v1/students/children", getToken(t, parent))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data struct {
		Items []student.Student `json:"items"`
	}
	decodeData(t, rec, &data)
	assert.Len(t, data.Items, 2)

	// children endpoint is parent-only
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/students/children", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// guardians of a student
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/students/"+st1.ID+"/guardians", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refs []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decodeData(t, rec, &refs)
	require.Len(t, refs, 1)
	assert.Equal(t, parent.ID, refs[0].ID)
	assert.Equal(t, "mona@test.cd", refs[0].Email)
}

func Test_studentApi_query(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	testutil.CreateStudent(t, stdRepo, "sid01", "Asha Rao", "2nd", "a")
	testutil.CreateStudent(t, stdRepo, "sid02", "Vikram Naik", "3rd", "b")
	testutil.CreateStudent(t, stdRepo, "sid03", "Kiran Naik", "3rd", "a")

	token := getToken(t, teacher)

	tests := []struct {
		name      string
		path      string
		wantCount int
		wantFirst string
	}{
		{name: "all sorted by code", path: "/api/v1/students", wantCount: 3, wantFirst: "sid01"},
		{name: "desc sort", path: "/api/v1/students?sort=desc", wantCount: 3, wantFirst: "sid03"},
		{name: "by grade", path: "/api/v1/students?grade=3rd", wantCount: 2, wantFirst: "sid02"},
		{name: "by grade and division", path: "/api/v1/students?grade=3rd&division=a", wantCount: 1, wantFirst: "sid03"},
		{name: "by code", path: "/api/v1/students?sid=SID02", wantCount: 1, wantFirst: "sid02"},
		{name: "by name", path: "/api/v1/students?name=naik", wantCount: 2, wantFirst: "sid02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var data struct {
				Items []student.Student `json:"items"`
			}
			decodeData(t, rec, &data)
			require.Len(t, data.Items, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, data.Items[0].Code)
			}
		})
	}
}
