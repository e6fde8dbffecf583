// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"github.com/DawrAli33285/sftpbackendnew/config"
	"github.com/DawrAli33285/sftpbackendnew/db"
	"github.com/DawrAli33285/sftpbackendnew/middleware"
	"github.com/DawrAli33285/sftpbackendnew/security"
	"github.com/DawrAli33285/sftpbackendnew/service"
	"github.com/DawrAli33285/sftpbackendnew/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

// Cache key for the admin user listing. CacheByRequestURI keys entries by
// the request URI, so mutations can evict the listing directly.
const adminUsersURI = "/api/admin/users"

type API struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Argon   *security.ArgonHash
	Storage storage.Storage
	OTPs    *service.OTPLedger
	Mail    service.Mailer
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	a.Argon = security.New()
	a.OTPs = service.NewOTPLedger(db)
	a.Mail = service.NewSMTPMailer()

	s, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage adapter, %w", err)
	}
	a.Storage = s

	a.setupRoutes()

	service.StartOTPSweep(a.OTPs)

	if config.SweepOTPsOnStart() {
		if err := a.OTPs.Sweep(); err != nil {
			zap.L().Error("Startup OTP sweep failed", zap.Error(err))
		}
	}

	return a, nil
}

func (a *API) setupRoutes() {
	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	auth := middleware.NewAuthMiddleware(a.DB)
	adminAuth := middleware.NewAdminAuthMiddleware(a.DB)
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a session token
		main.HEAD("/validate", auth, a.Validate)
	}

	authGroup := main.Group("/auth",
		middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: viper.GetInt("auth.requests_per_second"),
			Burst:             viper.GetInt("auth.burst"),
		}),
		middleware.BodySizeLimiter(1<<20),
	)
	{
		// POST /api/auth/register	-> Registers a user and mails a verification OTP
		authGroup.POST("/register", a.UserRegister)

		// POST /api/auth/verify-otp	-> Verifies a registration OTP
		authGroup.POST("/verify-otp", a.VerifyOTP)

		// POST /api/auth/resend-otp	-> Re-issues the pending registration OTP
		authGroup.POST("/resend-otp", a.ResendOTP)

		// POST /api/auth/login		-> Logs in, may require an OTP on a new IP
		authGroup.POST("/login", a.UserLogin)

		// POST /api/auth/verify-login-otp -> Completes a new-IP login
		authGroup.POST("/verify-login-otp", a.VerifyLoginOTP)

		// POST /api/auth/forgot-password  -> Mails a password recovery OTP
		authGroup.POST("/forgot-password", a.ForgotPassword)

		// POST /api/auth/verify-forgot-password-otp -> Trades the OTP for a reset token
		authGroup.POST("/verify-forgot-password-otp", a.VerifyForgotPasswordOTP)

		// POST /api/auth/resend-forgot-password-otp -> Re-issues the recovery OTP
		authGroup.POST("/resend-forgot-password-otp", a.ResendForgotPasswordOTP)

		// POST /api/auth/reset-password   -> Sets a new password using a reset token
		authGroup.POST("/reset-password", a.ResetPassword)
	}

	files := main.Group("/files", auth)
	{
		// POST /api/files		-> Uploads a new file and stores its metadata
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files		-> Lists owned and received files with signed URLs
		files.GET("", a.FileList)

		// DELETE /api/files/:id	-> Deletes a file owned by a user
		files.DELETE("/:id", a.FileDelete)
	}

	admin := main.Group("/admin")
	{
		// POST /api/admin/register	-> Registers a new admin
		admin.POST("/register", a.AdminRegister)

		// POST /api/admin/login	-> Logs in an admin and returns a token
		admin.POST("/login", a.AdminLogin)

		authed := admin.Group("", adminAuth)
		{
			// POST /api/admin/reset-password -> Directly resets an admin password
			authed.POST("/reset-password", a.AdminResetPassword)

			// GET /api/admin/users		-> Lists all users
			authed.GET("/users", cacheFor(30), a.AdminListUsers)

			// PATCH /api/admin/users/:id	-> Updates a user
			authed.PATCH("/users/:id", a.AdminUpdateUser)

			// DELETE /api/admin/users/:id	-> Deletes a user
			authed.DELETE("/users/:id", a.AdminDeleteUser)

			// GET /api/admin/files		-> Lists all files with uploader info
			authed.GET("/files", a.AdminListFiles)

			// PATCH /api/admin/files/:id	-> Updates file metadata
			authed.PATCH("/files/:id", a.AdminUpdateFile)

			// DELETE /api/admin/files/:id	-> Deletes any file
			authed.DELETE("/files/:id", a.AdminDeleteFile)

			// POST /api/admin/passcode	-> Mails a download passcode for a file
			authed.POST("/passcode", a.AdminSendPasscode)

			// POST /api/admin/send-files	-> Sends one upload to many users
			authed.POST("/send-files", middleware.BodySizeLimiter(maxUploadSize), a.AdminSendFiles)
		}
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
