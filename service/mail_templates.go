package service

import "fmt"

// Mail subjects, one per message kind
const (
	SubjectRegisterOTP  = "Verify Your Email - Registration OTP"
	SubjectRegisterNew  = "Resend OTP - Registration Verification"
	SubjectLoginOTP     = "Login Verification - OTP (New IP Detected)"
	SubjectResetOTP     = "Password Reset - OTP Verification"
	SubjectResetNewOTP  = "Password Reset - New OTP"
	SubjectResetDone    = "Password Reset Successful"
	SubjectFilePasscode = "Pass code to download file"
)

func wrapBody(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
	body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
	.container { max-width: 600px; margin: 0 auto; padding: 20px; }
	.code { font-size: 28px; letter-spacing: 6px; font-weight: bold; color: #00004D; }
	.note { font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">
	<h2>%s</h2>
	%s
</div>
</body>
</html>`, title, content)
}

func codeBody(title, lead, code, expiry string) string {
	return wrapBody(title, fmt.Sprintf(
		`<p>%s</p><p class="code">%s</p><p class="note">This code will expire in %s. If you didn't request it you can safely ignore this email.</p>`,
		lead, code, expiry,
	))
}

func RegisterOTPBody(code string) string {
	return codeBody("Verify your email", "Use this code to complete your registration:", code, "5 minutes")
}

func LoginOTPBody(code string) string {
	return codeBody("New IP address detected", "We noticed a login from a new network. Enter this code to continue:", code, "5 minutes")
}

func ResetOTPBody(code string) string {
	return codeBody("Reset your password", "Use this recovery code to reset your password:", code, "10 minutes")
}

func ResetDoneBody() string {
	return wrapBody("Password reset successful",
		`<p>Your password has been changed. If this wasn't you, contact support immediately.</p>`)
}

func PasscodeBody(passcode, fileName string, size int64) string {
	return wrapBody("Your file is ready",
		fmt.Sprintf(`<p>Use this pass code to download <b>%s</b> (%d bytes):</p><p class="code">%s</p>`,
			fileName, size, passcode))
}
