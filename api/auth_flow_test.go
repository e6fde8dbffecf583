package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIssuesOTP(t *testing.T) {
	a, _, fm := newTestAPI(t)

	userID := registerUser(t, a, "new@example.com", "hunter22pass", "1.2.3.4")
	require.NotEmpty(t, userID)

	var rec model.OTP
	require.NoError(t, a.DB.Where("owner_id = ? AND purpose = ?", userID, service.PurposeRegister).First(&rec).Error)
	assert.Len(t, rec.Code, 6)
	assert.False(t, rec.Verified)
	assert.WithinDuration(t, time.Now().Add(service.VerifyTTL), rec.ExpiresAt, 10*time.Second)

	assert.Eventually(t, func() bool { return fm.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, _, _ := newTestAPI(t)

	registerUser(t, a, "dup@example.com", "hunter22pass", "1.2.3.4")

	w := doJSON(t, a, http.MethodPost, "/api/auth/register", gin.H{
		"email":    "dup@example.com",
		"password": "hunter22pass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	a, _, _ := newTestAPI(t)

	w := doJSON(t, a, http.MethodPost, "/api/auth/register", gin.H{
		"email":    "weak@example.com",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPFlow(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "verify@example.com", "hunter22pass", "1.2.3.4")
	code := otpCode(t, a, userID, service.PurposeRegister)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	// Wrong code keeps the record around for another try
	w := doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "verify@example.com",
		"otp":   wrong,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Invalid OTP")

	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "verify@example.com",
		"otp":   code,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The code is single use
	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "verify@example.com",
		"otp":   code,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "not found")
}

func TestVerifyOTPExpired(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "stale@example.com", "hunter22pass", "1.2.3.4")
	code := otpCode(t, a, userID, service.PurposeRegister)
	expireOTP(t, a, userID, service.PurposeRegister)

	w := doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "stale@example.com",
		"otp":   code,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "expired")

	// Expired rows are removed on lookup
	var n int64
	require.NoError(t, a.DB.Model(model.OTP{}).Where("owner_id = ?", userID).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestVerifyOTPUnknownUser(t *testing.T) {
	a, _, _ := newTestAPI(t)

	w := doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "nobody@example.com",
		"otp":   "123456",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResendOTPReplacesCode(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "resend@example.com", "hunter22pass", "1.2.3.4")
	old := otpCode(t, a, userID, service.PurposeRegister)

	w := doJSON(t, a, http.MethodPost, "/api/auth/resend-otp", gin.H{
		"email": "resend@example.com",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	fresh := otpCode(t, a, userID, service.PurposeRegister)

	if old != fresh {
		w = doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
			"email": "resend@example.com",
			"otp":   old,
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "resend@example.com",
		"otp":   fresh,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestResendOTPCoversPendingLogin(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "relogin@example.com", "hunter22pass", "1.2.3.4")
	code := otpCode(t, a, userID, service.PurposeRegister)

	w := doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "relogin@example.com",
		"otp":   code,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	// A new-IP login leaves a login code pending, resend must refresh it
	w = doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"email":     "relogin@example.com",
		"password":  "hunter22pass",
		"ipAddress": "9.9.9.9",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, true, decode(t, w)["requireOTP"])

	w = doJSON(t, a, http.MethodPost, "/api/auth/resend-otp", gin.H{
		"email": "relogin@example.com",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	fresh := otpCode(t, a, userID, service.PurposeLogin)

	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-login-otp", gin.H{
		"email": "relogin@example.com",
		"otp":   fresh,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])
}

func TestResendOTPWithoutPending(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "nopend@example.com", "hunter22pass", "1.2.3.4")
	code := otpCode(t, a, userID, service.PurposeRegister)

	w := doJSON(t, a, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "nopend@example.com",
		"otp":   code,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/auth/resend-otp", gin.H{
		"email": "nopend@example.com",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "No pending verification")
}

func TestLoginKnownIP(t *testing.T) {
	a, _, _ := newTestAPI(t)

	registerUser(t, a, "known@example.com", "hunter22pass", "1.2.3.4")

	w := doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"email":     "known@example.com",
		"password":  "hunter22pass",
		"ipAddress": "1.2.3.4",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, false, body["requireOTP"])
	assert.NotEmpty(t, body["token"])
}

func TestLoginNewIPRequiresOTP(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "roam@example.com", "hunter22pass", "1.2.3.4")

	w := doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"email":     "roam@example.com",
		"password":  "hunter22pass",
		"ipAddress": "9.9.9.9",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["requireOTP"])
	assert.NotContains(t, body, "token")

	code := otpCode(t, a, userID, service.PurposeLogin)

	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-login-otp", gin.H{
		"email": "roam@example.com",
		"otp":   code,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])
}

func TestRegisterRejectsOversizedBody(t *testing.T) {
	a, _, _ := newTestAPI(t)

	w := doJSON(t, a, http.MethodPost, "/api/auth/register", gin.H{
		"email":    "big@example.com",
		"password": "hunter22pass",
		"padding":  strings.Repeat("x", 2<<20),
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rejection must stop the chain: exactly one JSON document in the
	// response and nothing committed
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "exceeds limit")

	var n int64
	require.NoError(t, a.DB.Model(model.User{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestLoginBadCredentials(t *testing.T) {
	a, _, _ := newTestAPI(t)

	registerUser(t, a, "creds@example.com", "hunter22pass", "1.2.3.4")

	// Unknown email and wrong password are indistinguishable
	for _, body := range []gin.H{
		{"email": "ghost@example.com", "password": "hunter22pass", "ipAddress": "1.2.3.4"},
		{"email": "creds@example.com", "password": "wrongwrong", "ipAddress": "1.2.3.4"},
	} {
		w := doJSON(t, a, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", decode(t, w)["error"])
	}
}
