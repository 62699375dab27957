package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Vasu3050/schoolsite/apps/api/echo"
	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/attendance"
	"github.com/Vasu3050/schoolsite/core/class"
	"github.com/Vasu3050/schoolsite/core/diary"
	"github.com/Vasu3050/schoolsite/core/gallery"
	"github.com/Vasu3050/schoolsite/core/notice"
	"github.com/Vasu3050/schoolsite/core/student"
	emailsvc "github.com/Vasu3050/schoolsite/services/email"
	logsvc "github.com/Vasu3050/schoolsite/services/logger"
	mediasvc "github.com/Vasu3050/schoolsite/services/media"
	"github.com/Vasu3050/schoolsite/storage/inmem"
)

var (
	conf *core.Config

	accRepo    *inmem.AccountRepository
	stdRepo    *inmem.StudentRepository
	clsRepo    *inmem.ClassRepository
	attRepo    *inmem.AttendanceRepository
	diaryRepo  *inmem.DiaryRepository
	noticeRepo *inmem.NoticeRepository
	galRepo    *inmem.GalleryRepository

	mediaSvc *mediasvc.DummyService
	accSvc   account.Service
	stdSvc   student.Service
)

func testConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "SchoolSite",
		SecretKey: []byte("test-secret"),
		Server: core.ServerConfig{
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		School: core.SchoolConfig{
			Latitude:     18.5204,
			Longitude:    73.8567,
			RadiusMeters: 200,
		},
	}
}

func setup(t *testing.T) Server {
	t.Helper()

	conf = testConfig()

	accRepo = inmem.NewAccountRepository()
	stdRepo = inmem.NewStudentRepository()
	clsRepo = inmem.NewClassRepository()
	attRepo = inmem.NewAttendanceRepository()
	diaryRepo = inmem.NewDiaryRepository()
	noticeRepo = inmem.NewNoticeRepository()
	galRepo = inmem.NewGalleryRepository()

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	mediaSvc = mediasvc.NewDummyService()

	accSvc = account.NewService(accRepo, stdRepo, mailSvc, conf)
	stdSvc = student.NewService(stdRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	class.InitValidators(validate, translator)
	diary.InitValidators(validate, translator)

	return NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		AccountSvc:     accSvc,
		StudentSvc:     stdSvc,
		ClassSvc:       class.NewService(clsRepo, accSvc, stdSvc),
		AttendanceSvc:  attendance.NewService(attRepo, conf),
		DiarySvc:       diary.NewService(diaryRepo),
		NoticeSvc:      notice.NewService(noticeRepo, mediaSvc, logger),
		GallerySvc:     gallery.NewService(galRepo, accSvc, mediaSvc, logger),
		Validate:       validate,
		Translator:     translator,
		SignalShutdown: func() {},
	})
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantMsg  string
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

type formFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

func newMultipartRequest(
	t *testing.T,
	method, path, token string,
	fields map[string]string,
	files ...formFile,
) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// newUploadRequest posts files with one "titles" field per file, in order.
func newUploadRequest(
	t *testing.T,
	path, token string,
	titles []string,
	files []formFile,
) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, title := range titles {
		require.NoError(t, w.WriteField("titles", title))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, acc account.Account) string {
	t.Helper()
	token, err := GenerateToken(conf, GetAccountClaims(conf, acc))
	require.NoError(t, err, "getToken() failed")
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err, "marshallObj() failed")
	return data
}

// envelope is the common response shape; Data stays raw for the caller
// to decode into the right type.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    json.RawMessage `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "decoding response envelope")
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, into), "decoding response data")
}

// checkCodeAndMsg asserts the status code and, when wantMsg is set, the
// (string) message of the envelope.
func checkCodeAndMsg(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "unexpected status code: body=%s", rec.Body.String())
	if tt.wantMsg != "" {
		var msg string
		env := decodeEnvelope(t, rec)
		if err := json.Unmarshal(env.Message, &msg); err == nil {
			assert.Equal(t, tt.wantMsg, msg)
		} else {
			assert.Contains(t, string(env.Message), tt.wantMsg)
		}
	}
}
