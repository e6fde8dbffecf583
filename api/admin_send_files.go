package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// AdminSendFiles uploads one file and fans it out to several users: the
// bytes are stored once and every recipient gets their own metadata row
// pointing at the same key.
func (a *API) AdminSendFiles(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	adminID := c.MustGet("adminID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	var userIDs []string
	if err := json.Unmarshal([]byte(c.PostForm("userIds")), &userIDs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid userIds format",
			"requestID": requestID,
		})
		return
	}

	if len(userIDs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No recipients selected",
			"requestID": requestID,
		})
		return
	}

	var users []model.User

	if err := a.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch recipients", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if len(users) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "No valid users found",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, f, contentType, err := validators.FileValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err), zap.String("requestID", requestID))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	key, err := a.Storage.Put(c.Request.Context(), f, fh.Filename, contentType, fh.Size)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	created := 0

	for _, u := range users {
		fileID, err := gonanoid.Generate(idCharset, 16)
		if err != nil {
			zap.L().Error("Failed to generate file ID", zap.Error(err), zap.String("requestID", requestID))
			continue
		}

		receiverID := u.ID
		rec := model.File{
			ID:           fileID,
			Name:         fh.Filename,
			StorageKey:   key,
			MimeType:     contentType,
			Size:         fh.Size,
			UploaderID:   adminID,
			UploaderRole: "admin",
			ReceiverID:   &receiverID,
		}

		if err := a.DB.Create(&rec).Error; err != nil {
			zap.L().Error("Failed to save file record", zap.Error(err),
				zap.String("receiver", u.ID), zap.String("requestID", requestID))
			continue
		}

		created++
	}

	if created == 0 {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to send files",
			"requestID": requestID,
		})

		// All rows failed, the object has no metadata pointing at it
		if derr := a.Storage.Delete(context.Background(), key); derr != nil {
			zap.L().Warn("Orphaned storage object after failed fan-out",
				zap.String("key", key), zap.Error(derr))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("File sent to %d user(s) successfully", created),
		"count":   created,
	})
}
