package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/notice"
	testutil "github.com/Vasu3050/schoolsite/tests"
)

func Test_noticeApi_publish(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)
	token := getToken(t, teacher)

	// parents may not publish
	req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/notices", getToken(t, parent),
		map[string]string{"title": "Sports Day", "description": "Ground closed on Friday"})
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// description too short
	req, rec = newMultipartRequest(t, http.MethodPost, "/api/v1/notices", token,
		map[string]string{"title": "Sports Day", "description": "short"})
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// bad expiry format
	req, rec = newMultipartRequest(t, http.MethodPost, "/api/v1/notices", token,
		map[string]string{"title": "Sports Day", "description": "Ground closed on Friday", "expiry": "tomorrow"})
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// text-only notice gets the default TTL
	req, rec = newMultipartRequest(t, http.MethodPost, "/api/v1/notices", token,
		map[string]string{"title": "Sports Day", "description": "Ground closed on Friday"})
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n notice.Notice
	decodeData(t, rec, &n)
	assert.Equal(t, teacher.ID, n.PostedBy)
	assert.Nil(t, n.Media)
	assert.WithinDuration(t, time.Now().Add(notice.DefaultTTL), n.ExpiresAt, time.Minute)

	// with an attachment
	req, rec = newMultipartRequest(t, http.MethodPost, "/api/v1/notices", token,
		map[string]string{"title": "Annual Day", "description": "Photos of the stage plan attached"},
		formFile{field: "media", name: "stage.jpg", contentType: "image/jpeg", content: []byte("jpegbytes")})
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &n)
	require.NotNil(t, n.Media)
	assert.Equal(t, "photo", n.Media.Type)
	assert.NotEmpty(t, n.Media.URL)
}

func Test_noticeApi_queryAndExpiry(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	parent := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "", []string{account.RoleParent}, account.StatusActive)
	token := getToken(t, teacher)

	req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/notices", token,
		map[string]string{"title": "Sports Day", "description": "Ground closed on Friday"})
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// plant an expired notice directly
	now := time.Now().UTC()
	_, err := noticeRepo.CreateNotice(context.Background(), notice.Notice{
		Title: "Old news", Description: "This one is long gone",
		PostedBy: teacher.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-72 * time.Hour),
	})
	require.NoError(t, err)

	// everyone sees only live notices
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/notices", getToken(t, parent))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var notices []notice.Notice
	decodeData(t, rec, &notices)
	require.Len(t, notices, 1)
	assert.Equal(t, "Sports Day", notices[0].Title)
}

func Test_noticeApi_updateAndDelete(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "", []string{account.RoleTeacher}, account.StatusActive)
	token := getToken(t, teacher)

	req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/notices", token,
		map[string]string{"title": "Annual Day", "description": "Photos of the stage plan attached"},
		formFile{field: "media", name: "stage.jpg", contentType: "image/jpeg", content: []byte("jpegbytes")})
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n notice.Notice
	decodeData(t, rec, &n)

	// edit the title
	req, rec = newAuthRequest(http.MethodPatch, "/api/v1/notices/"+n.ID, token, []byte(`{"title": "Annual Day 2026"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated notice.Notice
	decodeData(t, rec, &updated)
	assert.Equal(t, "Annual Day 2026", updated.Title)
	assert.Equal(t, n.Description, updated.Description)

	// deletion removes the stored attachment too
	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/notices/"+n.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, mediaSvc.Deleted, 1)

	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/notices/"+n.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
