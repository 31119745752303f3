// Package storage provides S3-compatible object storage for media uploads
// (family cover images, profile photos). DigitalOcean Spaces in production.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/pkg/logger"
)

var Module = fx.Module("storage",
	fx.Provide(NewService),
)

// DefaultFamilyCover is served when a family has not uploaded a cover image.
const DefaultFamilyCover = "https://familytreeapp-bucket.nyc3.cdn.digitaloceanspaces.com/defaults/family-avatar.png"

// Service provides S3-compatible storage operations
type Service struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	cfg           *config.StorageConfig
	log           *slog.Logger
}

// NewService creates a new storage service. When storage is not configured the
// service stays disabled and presign calls fail with a clear error; media
// fields then keep their default CDN URLs.
func NewService(cfg *config.Config, log *slog.Logger) (*Service, error) {
	storageCfg := &cfg.Storage
	scoped := log.With(logger.Scope("storage"))

	if !storageCfg.Enabled() {
		scoped.Warn("storage service disabled - no configuration provided")
		return &Service{cfg: storageCfg, log: scoped}, nil
	}

	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               storageCfg.Endpoint,
				HostnameImmutable: true,
				SigningRegion:     storageCfg.Region,
			}, nil
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(storageCfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			storageCfg.AccessKey,
			storageCfg.SecretKey,
			"",
		)),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	scoped.Info("storage service initialized",
		slog.String("endpoint", storageCfg.Endpoint),
		slog.String("bucket", storageCfg.Bucket),
	)

	return &Service{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		cfg:           storageCfg,
		log:           scoped,
	}, nil
}

// Enabled returns true if the storage service is properly configured
func (s *Service) Enabled() bool {
	return s.client != nil
}

// PresignUpload generates a presigned PUT URL for a media object and returns
// the URL together with the object key.
func (s *Service) PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("storage service not enabled")
	}
	if expiresIn == 0 {
		expiresIn = 15 * time.Minute
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presignClient.PresignPutObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = expiresIn
	})
	if err != nil {
		s.log.Error("failed to presign upload", slog.String("key", key), logger.Error(err))
		return "", fmt.Errorf("presign failed: %w", err)
	}

	return req.URL, nil
}

// PresignDownload generates a presigned GET URL for a media object.
func (s *Service) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("storage service not enabled")
	}
	if expiresIn == 0 {
		expiresIn = time.Hour
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = expiresIn
	})
	if err != nil {
		s.log.Error("failed to presign download", slog.String("key", key), logger.Error(err))
		return "", fmt.Errorf("presign failed: %w", err)
	}

	return req.URL, nil
}

// PublicURL returns the CDN URL for an uploaded object when a CDN base is
// configured, else the bucket-relative path.
func (s *Service) PublicURL(key string) string {
	if s.cfg.CDNBase != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.CDNBase, "/"), key)
	}
	return fmt.Sprintf("%s/%s", s.cfg.Bucket, key)
}

// MediaKey creates a storage key for an uploaded media file.
// Format: {kind}/{ownerID}/{uuid}-{sanitized_filename}
func MediaKey(kind, ownerID, filename string) string {
	return fmt.Sprintf("%s/%s/%s-%s", kind, ownerID, uuid.New().String(), SanitizeFilename(filename))
}

var (
	unsafeChars         = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename cleans a filename for storage
func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}

	sanitized := unsafeChars.ReplaceAllString(filename, "_")
	sanitized = repeatedUnderscores.ReplaceAllString(sanitized, "_")
	sanitized = strings.ToLower(strings.Trim(sanitized, "_"))

	if len(sanitized) > 200 {
		sanitized = sanitized[:200]
	}
	if sanitized == "" {
		return "unnamed"
	}
	return sanitized
}
