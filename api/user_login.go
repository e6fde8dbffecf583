package api

import (
	"errors"
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/security"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceType string `json:"deviceType"`
	IPAddress  string `json:"ipAddress"`
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" || data.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Email and password are required",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	// Same message whether the email or the password is wrong
	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid email or password",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := a.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid email or password",
			"requestID": requestID,
		})
		return
	}

	// Known network, skip the OTP step
	if user.IPAddress == data.IPAddress {
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
			"message":    "Login successful",
			"requireOTP": false,
			"token":      token,
			"user": gin.H{
				"id":         user.ID,
				"email":      user.Email,
				"deviceType": user.DeviceType,
				"ipAddress":  user.IPAddress,
			},
		})
		return
	}

	// New device or network, step up to an OTP. No token on this path.
	otp, err := a.OTPs.Issue(user.ID, service.PurposeLogin, service.VerifyTTL)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue login OTP", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	service.Dispatch(a.Mail, user.Email, service.SubjectLoginOTP, service.LoginOTPBody(otp.Code))

	c.JSON(http.StatusOK, gin.H{
		"message":    "New IP address detected. OTP sent to your email for verification",
		"requireOTP": true,
		"userId":     user.ID,
		"email":      user.Email,
	})
}
