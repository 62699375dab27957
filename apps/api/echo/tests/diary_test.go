package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/diary"
	testutil "github.com/Vasu3050/schoolsite/tests"
)

func Test_diaryApi_write(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized},
		{
			name: "admins do not write diaries", token: getToken(t, admin),
			body:     []byte(`{"title": "Trip", "content": "Bring lunch", "grade": "2nd"}`),
			wantCode: http.StatusForbidden,
		},
		{
			name: "needs a target", token: getToken(t, teacher),
			body:     []byte(`{"title": "Trip", "content": "Bring lunch"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown category", token: getToken(t, teacher),
			body:     []byte(`{"title": "Trip", "content": "Bring lunch", "grade": "2nd", "category": "party"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "teacher writes", token: getToken(t, teacher),
			body:     []byte(`{"title": "Trip", "content": "Bring lunch", "grade": "2nd", "category": "event"}`),
			wantCode: http.StatusCreated, extra: account.RoleTeacher,
		},
		{
			name: "parent writes a complaint", token: getToken(t, parent),
			body:     []byte(`{"title": "Bus", "content": "The bus was late again", "division": "a", "category": "complaint"}`),
			wantCode: http.StatusCreated, extra: account.RoleParent,
		},
		{
			name: "category defaults to other", token: getToken(t, teacher),
			body:     []byte(`{"title": "Note", "content": "A note", "grade": "2nd"}`),
			wantCode: http.StatusCreated, extra: account.RoleTeacher,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/diary", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndMsg(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var e diary.Entry
				decodeData(t, rec, &e)
				assert.Equal(t, tt.extra, e.AuthorRole)
				assert.False(t, e.ExpiresAt.IsZero())
			}
		})
	}
}

func Test_diaryApi_query(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)
	token := getToken(t, teacher)

	write := func(body string) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/diary", token, []byte(body))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	write(`{"title": "Trip", "content": "Bring lunch", "grade": "2nd", "category": "event"}`)
	write(`{"title": "Homework", "content": "Page 12", "grade": "2nd", "division": "a", "category": "homework"}`)
	write(`{"title": "Assembly", "content": "At nine", "grade": "3rd", "category": "notice"}`)

	// an expired entry never surfaces
	now := time.Now().UTC()
	_, err := diaryRepo.CreateEntry(context.Background(), diary.Entry{
		Title: "Old", Content: "Gone", Category: diary.CategoryOther,
		Grade: "2nd", AuthorID: teacher.ID, AuthorRole: account.RoleTeacher,
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantCount int
	}{
		{name: "all live entries", path: "/api/v1/diary", wantCount: 3},
		{name: "by grade", path: "/api/v1/diary?grade=2nd", wantCount: 2},
		{name: "by category", path: "/api/v1/diary?category=homework", wantCount: 1},
		{name: "by author", path: "/api/v1/diary?writtenBy=" + teacher.ID, wantCount: 3},
		{name: "by author miss", path: "/api/v1/diary?writtenBy=" + parent.ID, wantCount: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var data struct {
				Items []diary.Entry `json:"items"`
			}
			decodeData(t, rec, &data)
			assert.Len(t, data.Items, tt.wantCount)
		})
	}
}

func Test_diaryApi_authorOnlyEdits(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@test.cd", "", []string{account.RoleAdmin}, account.StatusActive)
	author := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	other := testutil.CreateAccount(t, accRepo, "Sam Teacher", "sam@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/diary", getToken(t, author),
		[]byte(`{"title": "Trip", "content": "Bring lunch", "grade": "2nd"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e diary.Entry
	decodeData(t, rec, &e)

	// another teacher may not touch it
	req, rec = newAuthRequest(http.MethodPut, "/api/v1/diary/"+e.ID, getToken(t, other), []byte(`{"title": "Hijack"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the author may
	req, rec = newAuthRequest(http.MethodPut, "/api/v1/diary/"+e.ID, getToken(t, author), []byte(`{"title": "Trip (updated)"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated diary.Entry
	decodeData(t, rec, &updated)
	assert.Equal(t, "Trip (updated)", updated.Title)
	assert.Equal(t, e.Content, updated.Content)

	// admins moderate everything
	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/diary/"+e.ID, getToken(t, admin))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodPut, "/api/v1/diary/"+e.ID, getToken(t, author), []byte(`{"title": "Gone"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
