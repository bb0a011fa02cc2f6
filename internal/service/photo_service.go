package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"typeb/internal/config"
)

// ErrUnsupportedPhotoType is returned for uploads that are not images
var ErrUnsupportedPhotoType = errors.New("unsupported photo content type")

// PhotoService stores submission photos in an S3-compatible bucket and hands
// out short-lived presigned URLs for viewing them
type PhotoService struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	urlTTL    time.Duration
}

// NewPhotoService builds a photo service from configuration. When no bucket
// is configured the service runs disabled and uploads are rejected.
func NewPhotoService(cfg *config.Config) (*PhotoService, error) {
	if cfg.S3Bucket == "" {
		return &PhotoService{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &PhotoService{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
		urlTTL:    cfg.PhotoURLTTL,
	}, nil
}

// IsEnabled reports whether photo storage is configured
func (p *PhotoService) IsEnabled() bool {
	return p != nil && p.client != nil
}

// UploadTaskPhoto stores a submission photo and returns its object key.
// Keys are namespaced per family so a bucket listing groups by household.
func (p *PhotoService) UploadTaskPhoto(ctx context.Context, familyID, taskID int64, body io.Reader, size int64, contentType string) (string, error) {
	if !p.IsEnabled() {
		return "", errors.New("photo storage is not configured")
	}

	ext, err := extensionFor(contentType)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("families/%d/tasks/%d/%s%s", familyID, taskID, uuid.New().String(), ext)

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return key, nil
}

// PresignPhotoURL returns a time-limited GET URL for a stored photo
func (p *PhotoService) PresignPhotoURL(ctx context.Context, key string) (string, error) {
	if !p.IsEnabled() {
		return "", errors.New("photo storage is not configured")
	}

	presigned, err := p.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		},
		func(po *s3.PresignOptions) {
			po.Expires = p.urlTTL
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign photo url: %w", err)
	}

	return presigned.URL, nil
}

// DeletePhoto removes a stored photo. Missing objects are not an error.
func (p *PhotoService) DeletePhoto(ctx context.Context, key string) error {
	if !p.IsEnabled() || key == "" {
		return nil
	}
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func extensionFor(contentType string) (string, error) {
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	switch contentType {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	case "image/heic":
		return ".heic", nil
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 && strings.HasPrefix(contentType, "image/") {
		return exts[0], nil
	}
	return "", ErrUnsupportedPhotoType
}
