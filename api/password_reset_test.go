package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetFlow(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "reset@example.com", "oldpassword1", "1.2.3.4")

	w := doJSON(t, a, http.MethodPost, "/api/auth/forgot-password", gin.H{
		"email": "reset@example.com",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec model.OTP
	require.NoError(t, a.DB.Where("owner_id = ? AND purpose = ?", userID, service.PurposeReset).First(&rec).Error)
	assert.WithinDuration(t, time.Now().Add(service.ResetTTL), rec.ExpiresAt, 10*time.Second)

	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-forgot-password-otp", gin.H{
		"email": "reset@example.com",
		"otp":   rec.Code,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resetToken := decode(t, w)["resetToken"].(string)
	require.NotEmpty(t, resetToken)

	w = doJSON(t, a, http.MethodPost, "/api/auth/reset-password", gin.H{
		"resetToken":  resetToken,
		"newPassword": "newpassword1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password no longer works, the new one does
	w = doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"email":     "reset@example.com",
		"password":  "oldpassword1",
		"ipAddress": "1.2.3.4",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	loginUser(t, a, "reset@example.com", "newpassword1", "1.2.3.4")

	// Every outstanding code was wiped with the reset
	var n int64
	require.NoError(t, a.DB.Model(model.OTP{}).Where("owner_id = ?", userID).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestResetPasswordRejectsSessionToken(t *testing.T) {
	a, _, _ := newTestAPI(t)

	registerUser(t, a, "sneaky@example.com", "oldpassword1", "1.2.3.4")
	token := loginUser(t, a, "sneaky@example.com", "oldpassword1", "1.2.3.4")

	w := doJSON(t, a, http.MethodPost, "/api/auth/reset-password", gin.H{
		"resetToken":  token,
		"newPassword": "newpassword1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid reset token", decode(t, w)["error"])
}

func TestResetPasswordRejectsGarbageToken(t *testing.T) {
	a, _, _ := newTestAPI(t)

	w := doJSON(t, a, http.MethodPost, "/api/auth/reset-password", gin.H{
		"resetToken":  "not-a-token",
		"newPassword": "newpassword1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Invalid or expired reset token")
}

func TestResendForgotPasswordOTP(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "again@example.com", "oldpassword1", "1.2.3.4")

	// Unlike the registration resend, this one works without a pending code
	w := doJSON(t, a, http.MethodPost, "/api/auth/resend-forgot-password-otp", gin.H{
		"email": "again@example.com",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code := otpCode(t, a, userID, service.PurposeReset)

	w = doJSON(t, a, http.MethodPost, "/api/auth/verify-forgot-password-otp", gin.H{
		"email": "again@example.com",
		"otp":   code,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
