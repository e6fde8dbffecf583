package api

import (
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/security"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyLoginOTP completes a new-IP login and hands out the session token
// the login endpoint withheld.
func (a *API) VerifyLoginOTP(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	user, ok := a.checkOTP(c, service.PurposeLogin)
	if !ok {
		return
	}

	token, err := security.MakeSessionToken(user.ID, security.KindUser, security.UserSessionTTL)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sign session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"deviceType": user.DeviceType,
			"ipAddress":  user.IPAddress,
		},
	})
}
