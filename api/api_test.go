package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/security"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(_ context.Context, r io.Reader, nameHint, _ string, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPut {
		return "", fmt.Errorf("storage unavailable")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	key := "test/" + nameHint
	f.objects[key] = data
	return key, nil
}

func (f *fakeStorage) SignedGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://signed.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Missing keys are a success, same as the real adapters
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, htmlBody})
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestAPI(t *testing.T) (*API, *fakeStorage, *fakeMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.admin_session_hours", 168)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("upload.allowed_types", []string{})
	viper.Set("auth.requests_per_second", 1000)
	viper.Set("auth.burst", 1000)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Admin{}, model.OTP{}, model.File{}))

	fs := newFakeStorage()
	fm := &fakeMailer{}

	a := &API{
		DB:      db,
		Argon:   security.New(),
		OTPs:    service.NewOTPLedger(db),
		Storage: fs,
		Mail:    fm,
	}
	a.setupRoutes()

	return a, fs, fm
}

func doJSON(t *testing.T, a *API, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// otpCode digs the current code out of the ledger, standing in for the
// email channel.
func otpCode(t *testing.T, a *API, ownerID, purpose string) string {
	t.Helper()

	var rec model.OTP
	require.NoError(t, a.DB.
		Where("owner_id = ? AND purpose = ? AND verified = ?", ownerID, purpose, false).
		First(&rec).Error)
	return rec.Code
}

func expireOTP(t *testing.T, a *API, ownerID, purpose string) {
	t.Helper()

	require.NoError(t, a.DB.Model(model.OTP{}).
		Where("owner_id = ? AND purpose = ?", ownerID, purpose).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
}

func registerUser(t *testing.T, a *API, email, password, ip string) string {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/auth/register", gin.H{
		"email":      email,
		"password":   password,
		"deviceType": "desktop",
		"ipAddress":  ip,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decode(t, w)["userId"].(string)
}

func loginUser(t *testing.T, a *API, email, password, ip string) string {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"email":     email,
		"password":  password,
		"ipAddress": ip,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	require.Equal(t, false, body["requireOTP"])
	return body["token"].(string)
}

func registerAdmin(t *testing.T, a *API, email, password string) string {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/admin/register", gin.H{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decode(t, w)["token"].(string)
}

func buildMultipart(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)

	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func doMultipart(t *testing.T, a *API, path string, fields map[string]string, fileName string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	buf, contentType := buildMultipart(t, fields, fileName, content)

	req := httptest.NewRequest(http.MethodPost, path, buf)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}
