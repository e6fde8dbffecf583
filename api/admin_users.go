package api

import (
	"errors"
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) AdminListUsers(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var users []model.User

	if err := a.DB.Find(&users).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

type userUpdateBody struct {
	Email      string `json:"email"`
	DeviceType string `json:"deviceType"`
	IPAddress  string `json:"ipAddress"`
}

func (a *API) AdminUpdateUser(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	userID := c.Param("id")

	var data userUpdateBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	updates := map[string]any{}
	if data.Email != "" {
		if err := validators.EmailValidator(data.Email); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		updates["email"] = data.Email
	}
	if data.DeviceType != "" {
		updates["device_type"] = data.DeviceType
	}
	if data.IPAddress != "" {
		updates["ip_address"] = data.IPAddress
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	var user model.User
	if err := a.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
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

	err := a.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Updates(updates).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	store.Delete(adminUsersURI)

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
	})
}

func (a *API) AdminDeleteUser(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	userID := c.Param("id")

	if err := a.DB.Delete(&model.User{}, "id = ?", userID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	store.Delete(adminUsersURI)

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
