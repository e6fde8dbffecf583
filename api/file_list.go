package api

import (
	"net/http"
	"time"

	"github.com/DawrAli33285/sftpbackendnew/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// How long a retrieval URL stays valid. Computed fresh on every listing,
// never cached past this.
const signedURLTTL = 5 * time.Minute

type signedFile struct {
	model.File
	URL string `json:"url"`
}

// FileList returns the caller's uploaded files plus the ones sent to them,
// each with a freshly signed retrieval URL.
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var owned, received []model.File

	err := a.DB.
		Where("uploader_id = ? AND uploader_role = ?", userID, "user").
		Order("created_at DESC").
		Find(&owned).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch owned files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.
		Where("receiver_id = ?", userID).
		Order("created_at DESC").
		Find(&received).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch received files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	sign := func(files []model.File) ([]signedFile, error) {
		out := make([]signedFile, 0, len(files))
		for _, f := range files {
			url, err := a.Storage.SignedGet(c.Request.Context(), f.StorageKey, signedURLTTL)
			if err != nil {
				return nil, err
			}
			out = append(out, signedFile{File: f, URL: url})
		}
		return out, nil
	}

	signedOwned, err := sign(owned)
	if err == nil {
		var signedReceived []signedFile
		signedReceived, err = sign(received)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{
				"message":       "Files fetched successfully",
				"count":         len(signedOwned),
				"files":         signedOwned,
				"receivedFiles": signedReceived,
			})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error("Failed to sign retrieval URLs", zap.Error(err), zap.String("requestID", requestID))
}
