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

type resendBody struct {
	Email string `json:"email"`
}

// ResendOTP replaces the user's pending verification code in place,
// whichever of the registration or login flows it belongs to. Works the
// same whether the old code was still live or already expired, on purpose.
func (a *API) ResendOTP(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resendBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var user model.User

	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found. Please register first",
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

	purpose := service.PurposeRegister

	otp, err := a.OTPs.Refresh(user.ID, purpose, service.VerifyTTL)
	if errors.Is(err, service.ErrOTPMissing) {
		purpose = service.PurposeLogin
		otp, err = a.OTPs.Refresh(user.ID, purpose, service.VerifyTTL)
	}
	if err != nil {
		if errors.Is(err, service.ErrOTPMissing) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "No pending verification found for this email",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to refresh OTP", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if purpose == service.PurposeLogin {
		service.Dispatch(a.Mail, user.Email, service.SubjectLoginOTP, service.LoginOTPBody(otp.Code))
	} else {
		service.Dispatch(a.Mail, user.Email, service.SubjectRegisterNew, service.RegisterOTPBody(otp.Code))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "New OTP sent successfully",
	})
}
