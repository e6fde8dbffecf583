package api

import (
	"errors"
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type adminFileEntry struct {
	model.File
	URL      string `json:"url"`
	Uploader gin.H  `json:"uploader"`
}

// uploaderDisplay resolves who uploaded a file against the right identity
// table. Files whose uploader is gone still render a stable placeholder
// rather than fail the listing.
func (a *API) uploaderDisplay(f *model.File) gin.H {
	if f.UploaderID == "" {
		return gin.H{"email": "SFTP Upload"}
	}

	if f.UploaderRole == "admin" {
		var admin model.Admin
		if err := a.DB.Select("email").Where("id = ?", f.UploaderID).First(&admin).Error; err != nil {
			return gin.H{"email": "Admin"}
		}
		return gin.H{"email": admin.Email}
	}

	var user model.User
	if err := a.DB.Select("email").Where("id = ?", f.UploaderID).First(&user).Error; err != nil {
		return gin.H{"email": "Unknown"}
	}
	return gin.H{"email": user.Email}
}

func (a *API) AdminListFiles(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var files []model.File

	if err := a.DB.Order("created_at DESC").Find(&files).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	out := make([]adminFileEntry, 0, len(files))

	for _, f := range files {
		url, err := a.Storage.SignedGet(c.Request.Context(), f.StorageKey, signedURLTTL)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to sign retrieval URL", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		out = append(out, adminFileEntry{
			File:     f,
			URL:      url,
			Uploader: a.uploaderDisplay(&f),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"files": out,
	})
}

type fileUpdateBody struct {
	Name       string  `json:"name"`
	ReceiverID *string `json:"receiver"`
	Paid       *bool   `json:"paid"`
}

func (a *API) AdminUpdateFile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fileID := c.Param("id")

	var data fileUpdateBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	updates := map[string]any{}
	if data.Name != "" {
		updates["name"] = data.Name
	}
	if data.ReceiverID != nil {
		updates["receiver_id"] = *data.ReceiverID
	}
	if data.Paid != nil {
		updates["paid"] = *data.Paid
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	err := a.DB.
		Model(model.File{}).
		Where("id = ?", fileID).
		Updates(updates).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File updated successfully",
	})
}

// AdminDeleteFile removes any file regardless of owner. Same sequencing as
// the user-facing delete: storage first, row second.
func (a *API) AdminDeleteFile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fileID := c.Param("id")

	var file model.File

	if err := a.DB.Where("id = ?", fileID).First(&file).Error; err != nil {
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

	if err := a.Storage.Delete(c.Request.Context(), file.StorageKey); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file from storage", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Delete(&model.File{}, "id = ?", file.ID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File deleted successfully",
	})
}
