package api

import (
	"errors"
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/security"
	"github.com/DawrAli33285/sftpbackendnew/service"
	"github.com/DawrAli33285/sftpbackendnew/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type passcodeBody struct {
	Email  string `json:"email"`
	FileID string `json:"id"`
}

// AdminSendPasscode mails a one-time download passcode for a file and marks
// the file paid. The flag flips on dispatch, not on redemption.
func (a *API) AdminSendPasscode(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data passcodeBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var file model.File

	if err := a.DB.Where("id = ?", data.FileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	passcode, err := security.GenerateOTPCode()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	service.Dispatch(a.Mail, data.Email, service.SubjectFilePasscode,
		service.PasscodeBody(passcode, file.Name, file.Size))

	err = a.DB.
		Model(model.File{}).
		Where("id = ?", file.ID).
		Update("paid", true).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark file as paid", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pass code sent successfully",
	})
}
