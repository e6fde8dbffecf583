package middleware

import (
	"net/http"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAdminAuthMiddleware is the admin variant of the auth gateway. A
// perfectly valid user session token still fails here with 403 because it
// lacks the admin kind claim.
func NewAdminAuthMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No token provided",
				"requestID": requestID,
			})
			return
		}

		claims, err := security.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})
			return
		}

		if claims.Kind != security.KindAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Not authorized as admin",
				"requestID": requestID,
			})
			return
		}

		var admin model.Admin
		err = d.Where("id = ?", claims.SubjectID).First(&admin).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error":     "Admin not found",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if admin exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("adminID", claims.SubjectID)
		c.Next()
	}
}
