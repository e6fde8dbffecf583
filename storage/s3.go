package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Objects above this go through the multipart uploader
const multipartLimit = 100 << 20

var keyUnsafe = regexp.MustCompile(`\s+`)

type S3Storage struct {
	C      *s3.Client
	Bucket *string
	Folder string
}

func NewS3() (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key_id"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Storage{
		C:      client,
		Bucket: bucket,
		Folder: viper.GetString("aws.upload_folder"),
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, r io.Reader, nameHint, contentType string, size int64) (string, error) {
	key := fmt.Sprintf("%s/%d-%s", s.Folder, time.Now().UnixMilli(), keyUnsafe.ReplaceAllString(nameHint, "_"))

	in := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	var err error
	if size > multipartLimit {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		_, err = u.Upload(ctx, in)
	} else {
		_, err = s.C.PutObject(ctx, in)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload object to S3, %w", err)
	}

	return key, nil
}

func (s *S3Storage) SignedGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	presign := s3.NewPresignClient(s.C)

	req, err := presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object, %w", err)
	}

	return req.URL, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	// S3 reports success for keys that don't exist, which is exactly the
	// idempotency the custody model wants
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil
		}

		return fmt.Errorf("failed to delete object from S3, %w", err)
	}

	return nil
}
