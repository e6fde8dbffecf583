package api

import (
	"errors"
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type otpBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// checkOTP runs the verification state machine shared by the register,
// login and password-reset flows: find the user, find the pending code for
// the purpose, compare, and consume on a match. It writes the error
// response itself, callers only handle the success path.
func (a *API) checkOTP(c *gin.Context, purpose string) (*model.User, bool) {
	requestID := c.MustGet("requestID").(string)

	var data otpBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	var user model.User

	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return nil, false
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	rec, err := a.OTPs.FindUnverified(user.ID, purpose)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPMissing):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "OTP expired or not found. Please request a new OTP",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrOTPExpired):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "OTP has expired. Please request a new OTP",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up OTP record", zap.Error(err), zap.String("requestID", requestID))
		}
		return nil, false
	}

	if !a.OTPs.Verify(rec, data.OTP) {
		// Record is retained so the user can retry
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid OTP. Please try again",
			"requestID": requestID,
		})
		return nil, false
	}

	if err := a.OTPs.Consume(rec); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to consume OTP record", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	return &user, true
}

// VerifyOTP completes the registration flow.
func (a *API) VerifyOTP(c *gin.Context) {
	user, ok := a.checkOTP(c, service.PurposeRegister)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully! Registration complete",
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"deviceType": user.DeviceType,
			"ipAddress":  user.IPAddress,
		},
	})
}
