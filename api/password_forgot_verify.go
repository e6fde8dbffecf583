package api

import (
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/security"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyForgotPasswordOTP trades a valid recovery code for a short-lived
// reset token. The token carries a purpose claim so a session token can
// never be used in its place.
func (a *API) VerifyForgotPasswordOTP(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.checkOTP(c, service.PurposeReset)
	if !ok {
		return
	}

	resetToken, err := security.MakeResetToken(user.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sign reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "OTP verified successfully. You can now reset your password",
		"resetToken": resetToken,
		"email":      user.Email,
	})
}
