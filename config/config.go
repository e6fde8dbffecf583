// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	sweepOTPs      = pflag.Bool("sweep-otps", false, "Runs an OTP expiry sweep on startup")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"sqlite", "postgres"}
)

// SweepOTPsOnStart reports whether the --sweep-otps flag was passed.
func SweepOTPsOnStart() bool {
	return *sweepOTPs
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.admin_session_hours", "jwt_admin_session_hours")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("storage.type", "storage_type")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")

	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.access_key_id", "aws_access_key_id")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.upload_folder", "aws_upload_folder")

	v.BindEnv("sftp.host", "sftp_host")
	v.BindEnv("sftp.port", "sftp_port")
	v.BindEnv("sftp.username", "sftp_username")
	v.BindEnv("sftp.password", "sftp_password")
	v.BindEnv("sftp.private_key_path", "sftp_private_key_path")
	v.BindEnv("sftp.passphrase", "sftp_passphrase")
	v.BindEnv("sftp.remote_dir", "sftp_remote_dir")
	v.BindEnv("sftp.base_url", "sftp_base_url")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender", "mail_sender")
	v.BindEnv("mail.password", "mail_password")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")

	v.SetDefault("jwt.admin_session_hours", 168)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("aws.upload_folder", "client1")

	v.SetDefault("sftp.port", 22)
	v.SetDefault("sftp.remote_dir", "/uploads")

	v.SetDefault("mail.port", 587)

	v.SetDefault("upload.max_size", 50)
	v.SetDefault("upload.allowed_types", []string{})

	v.SetDefault("auth.requests_per_second", 5)
	v.SetDefault("auth.burst", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("aws.region") == "" {
				return errors.New("aws region can't be empty")
			}
			if v.GetString("aws.access_key_id") == "" {
				return errors.New("aws access key id can't be empty")
			}
			if v.GetString("aws.secret_access_key") == "" {
				return errors.New("aws secret access key can't be empty")
			}
			if v.GetString("aws.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "sftp":
		{
			if v.GetString("sftp.host") == "" {
				return errors.New("sftp host can't be empty")
			}
			if v.GetString("sftp.username") == "" {
				return errors.New("sftp username can't be empty")
			}
			if v.GetString("sftp.password") == "" && v.GetString("sftp.private_key_path") == "" {
				return errors.New("no sftp authentication method provided (password or private key)")
			}
			if v.GetString("sftp.base_url") == "" {
				return errors.New("sftp base url can't be empty")
			}
		}
	default:
		return errors.New("invalid storage type provided")
	}

	if v.GetString("mail.host") == "" {
		return errors.New("mail host can't be empty")
	}

	if v.GetString("mail.sender") == "" {
		return errors.New("mail sender address can't be empty")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
