package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Vasu3050/schoolsite/apps/api/echo"
	"github.com/Vasu3050/schoolsite/core/account"
	testutil "github.com/Vasu3050/schoolsite/tests"
)

func Test_accountApi_register(t *testing.T) {
	app := setup(t)

	st := testutil.CreateStudent(t, stdRepo, "sid01", "Asha Rao", "2nd", "a")

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{"name": "Bob"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown role", body: []byte(`{"name": "Bob Teacher", "email": "bob@test.cd", "password": "Sekret123", "role": "principal"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "parent without sid", body: []byte(`{"name": "Mona Rao", "email": "mona@test.cd", "password": "Sekret123", "role": "parent"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "teacher ok", body: []byte(`{"name": "Bob Teacher", "email": "bob@test.cd", "password": "Sekret123", "role": "teacher"}`),
			wantCode: http.StatusCreated,
		},
		{
			name: "role already held", body: []byte(`{"name": "Bobby", "email": "bob@test.cd", "password": "Sekret123", "role": "teacher"}`),
			wantCode: http.StatusConflict, wantMsg: account.ErrRoleExists.Error(),
		},
		{
			name: "parent ok", body: []byte(`{"name": "Mona Rao", "email": "mona@test.cd", "password": "Sekret123", "role": "parent", "sid": "sid01"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var acc account.Account
				decodeData(t, rec, &acc)
				assert.Equal(t, account.StatusPending, acc.Status)
			}
		})
	}

	// the new parent is linked to the student as a guardian
	parent, err := accRepo.GetAccountByNameOrEmail(context.Background(), "", "mona@test.cd")
	require.NoError(t, err)
	st, err = stdRepo.GetStudentByID(context.Background(), st.ID)
	require.NoError(t, err)
	assert.True(t, st.HasGuardian(parent.ID))
}

func Test_accountApi_login(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusActive)
	pending := testutil.CreateAccount(t, accRepo, "New Parent", "new@test.cd", "Sekret123", []string{account.RoleParent}, account.StatusPending)
	blocked := testutil.CreateAccount(t, accRepo, "Bad Apple", "bad@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusBlocked)
	_ = blocked

	tests := []httpTest{
		{
			name: "unknown account", body: []byte(`{"name": "nobody", "password": "Sekret123", "role": "teacher"}`),
			wantCode: http.StatusUnauthorized, wantMsg: "invalid credentials",
		},
		{
			name: "wrong password", body: []byte(`{"name": "mary@test.cd", "password": "wrong", "role": "teacher"}`),
			wantCode: http.StatusUnauthorized, wantMsg: "invalid credentials",
		},
		{
			name: "role not held", body: []byte(`{"name": "mary@test.cd", "password": "Sekret123", "role": "admin"}`),
			wantCode: http.StatusUnauthorized, wantMsg: "invalid credentials",
		},
		{
			name: "pending account", body: []byte(`{"name": "new@test.cd", "password": "Sekret123", "role": "parent"}`),
			wantCode: http.StatusForbidden, wantMsg: "account is pending approval",
		},
		{
			name: "blocked account", body: []byte(`{"name": "bad@test.cd", "password": "Sekret123", "role": "teacher"}`),
			wantCode: http.StatusForbidden, wantMsg: "account is blocked",
		},
		{
			// status is reported regardless of the password, so the
			// response does not reveal whether it was correct
			name: "blocked account wrong password", body: []byte(`{"name": "bad@test.cd", "password": "wrong", "role": "teacher"}`),
			wantCode: http.StatusForbidden, wantMsg: "account is blocked",
		},
		{
			name: "login by email", body: []byte(`{"name": "mary@test.cd", "password": "Sekret123", "role": "teacher"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "login by name", body: []byte(`{"name": "Mary Teacher", "password": "Sekret123", "role": "teacher"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)

			if rec.Code == http.StatusOK {
				var data LoginResponse
				decodeData(t, rec, &data)
				assert.Equal(t, teacher.ID, data.Account.ID)
				assert.NotEmpty(t, data.Access)
				assert.NotEmpty(t, data.Refresh)
				assert.NotEmpty(t, rec.Result().Cookies())
			}
		})
	}
	_ = pending
}

func Test_accountApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusActive)

	login := func() LoginResponse {
		req, rec := newRequest(http.MethodPost, "/api/v1/users/login", []byte(`{"name": "mary@test.cd", "password": "Sekret123", "role": "teacher"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var data LoginResponse
		decodeData(t, rec, &data)
		return data
	}
	first := login()

	// an access token is not a refresh token
	req, rec := newRequest(http.MethodPost, "/api/v1/users/token-refresh", marshallObj(t, RefreshRequest{RefreshToken: first.Access}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a valid refresh rotates the pair
	req, rec = newRequest(http.MethodPost, "/api/v1/users/token-refresh", marshallObj(t, RefreshRequest{RefreshToken: first.Refresh}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second LoginResponse
	decodeData(t, rec, &second)
	assert.NotEqual(t, first.Refresh, second.Refresh)

	// the rotated-out token is dead
	req, rec = newRequest(http.MethodPost, "/api/v1/users/token-refresh", marshallObj(t, RefreshRequest{RefreshToken: first.Refresh}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_accountApi_approveReject(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "Sekret123", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusActive)
	pending := testutil.CreateAccount(t, accRepo, "New Teacher", "new@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusPending)
	rejected := testutil.CreateAccount(t, accRepo, "Bad Teacher", "bad@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusPending)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "approve: auth required", method: http.MethodPost, path: "/api/v1/users/approve/" + pending.ID, wantCode: http.StatusUnauthorized},
		{
			name: "approve: admin required", method: http.MethodPost, path: "/api/v1/users/approve/" + pending.ID,
			token: getToken(t, teacher), wantCode: http.StatusForbidden,
		},
		{
			name: "approve: not found", method: http.MethodPost, path: "/api/v1/users/approve/nope",
			token: adminToken, wantCode: http.StatusNotFound,
		},
		{
			name: "approve: active account", method: http.MethodPost, path: "/api/v1/users/approve/" + teacher.ID,
			token: adminToken, wantCode: http.StatusConflict, wantMsg: account.ErrNotPending.Error(),
		},
		{
			name: "approve ok", method: http.MethodPost, path: "/api/v1/users/approve/" + pending.ID,
			token: adminToken, wantCode: http.StatusOK,
		},
		{
			name: "reject ok", method: http.MethodPost, path: "/api/v1/users/reject/" + rejected.ID,
			token: adminToken, wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)
		})
	}

	approved, err := accRepo.GetAccountByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, approved.Status)

	// rejected registrations are removed entirely
	_, err = accRepo.GetAccountByID(context.Background(), rejected.ID)
	assert.Equal(t, account.ErrNotFound, err)
}

func Test_accountApi_detailAccess(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "Sekret123", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusActive)
	other := testutil.CreateAccount(t, accRepo, "Other Teacher", "other@test.cd", "Sekret123", []string{account.RoleTeacher}, account.StatusActive)

	tests := []httpTest{
		{name: "self read", method: http.MethodGet, path: "/api/v1/users/" + teacher.ID, token: getToken(t, teacher), wantCode: http.StatusOK},
		{name: "admin reads anyone", method: http.MethodGet, path: "/api/v1/users/" + teacher.ID, token: getToken(t, admin), wantCode: http.StatusOK},
		{name: "peer read hidden", method: http.MethodGet, path: "/api/v1/users/" + other.ID, token: getToken(t, teacher), wantCode: http.StatusNotFound},
		{
			name: "self update", method: http.MethodPut, path: "/api/v1/users/" + teacher.ID, token: getToken(t, teacher),
			body: []byte(`{"phone": "0812345678"}`), wantCode: http.StatusOK,
		},
		{
			name: "self role escalation", method: http.MethodPut, path: "/api/v1/users/" + teacher.ID, token: getToken(t, teacher),
			body: []byte(`{"roles": ["admin"]}`), wantCode: http.StatusForbidden,
		},
		{
			name: "admin sets status", method: http.MethodPut, path: "/api/v1/users/" + teacher.ID, token: getToken(t, admin),
			body: []byte(`{"status": "blocked"}`), wantCode: http.StatusOK,
		},
		{name: "delete: admin required", method: http.MethodDelete, path: "/api/v1/users/" + other.ID, token: getToken(t, teacher), wantCode: http.StatusForbidden},
		{name: "admin cannot delete self", method: http.MethodDelete, path: "/api/v1/users/" + admin.ID, token: getToken(t, admin), wantCode: http.StatusForbidden},
		{name: "admin delete", method: http.MethodDelete, path: "/api/v1/users/" + other.ID, token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)
		})
	}
}

func Test_accountApi_deleteUnlinksGuardians(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "Sekret123", []string{account.RoleAdmin}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "Sekret123", []string{account.RoleParent}, account.StatusActive)
	otherParent := testutil.CreateAccount(t, accRepo, "Ravi Naik", "ravi@test.cd", "Sekret123", []string{account.RoleParent}, account.StatusActive)

	onlyChild := testutil.CreateStudent(t, stdRepo, "sid01", "Aarav Rao", "2nd", "a", parent.ID)
	shared := testutil.CreateStudent(t, stdRepo, "sid02", "Diya Naik", "3rd", "b", parent.ID, otherParent.ID)

	req, rec := newAuthRequest(http.MethodDelete, "/api/v1/users/"+parent.ID, getToken(t, admin))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	_, err := accRepo.GetAccountByID(context.Background(), parent.ID)
	assert.Equal(t, account.ErrNotFound, err)

	st, err := stdRepo.GetStudentByID(context.Background(), onlyChild.ID)
	require.NoError(t, err)
	assert.Empty(t, st.GuardianIDs)

	st, err = stdRepo.GetStudentByID(context.Background(), shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{otherParent.ID}, st.GuardianIDs)
}

func Test_accountApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "Sekret123", []string{account.RoleAdmin}, account.StatusActive)
	testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	testutil.CreateAccount(t, accRepo, "Mona Parent", "mona@test.cd", "", []string{account.RoleParent}, account.StatusPending)

	adminToken := getToken(t, admin)

	tests := []struct {
		name      string
		path      string
		wantCount int
	}{
		{name: "all", path: "/api/v1/users", wantCount: 3},
		{name: "by role", path: "/api/v1/users?role=teacher", wantCount: 1},
		{name: "by status", path: "/api/v1/users?status=pending", wantCount: 1},
		{name: "search", path: "/api/v1/users?search=mona", wantCount: 1},
		{name: "search miss", path: "/api/v1/users?search=zzz", wantCount: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, adminToken)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var data struct {
				Items []account.Account `json:"items"`
			}
			decodeData(t, rec, &data)
			assert.Len(t, data.Items, tt.wantCount)
		})
	}
}
