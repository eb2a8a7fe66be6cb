package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/homefindr/estate-api/app/observability/metrics"
	"github.com/homefindr/estate-api/config"
	"github.com/homefindr/estate-api/internal/types"
)

var _ UploadService = (*S3UploadService)(nil)

// UploadService forwards raw image bytes to the external hosted image
// store and returns the resulting public URL. No local fallback storage and
// no retries: the caller decides whether to retry the whole upload.
type UploadService interface {
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// ObjectPutter is the slice of the S3 client the gateway needs; narrowed
// for mocking in tests.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3UploadService struct {
	logger *slog.Logger
	client ObjectPutter
	cfg    config.UploadConfig
}

// NewS3UploadService builds the gateway against an S3-compatible endpoint
// (MinIO in development).
func NewS3UploadService(cfg config.UploadConfig, logger *slog.Logger) (*S3UploadService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3UploadService{
		logger: logger,
		client: client,
		cfg:    cfg,
	}, nil
}

// NewS3UploadServiceWithClient injects a prebuilt client; used by tests.
func NewS3UploadServiceWithClient(client ObjectPutter, cfg config.UploadConfig, logger *slog.Logger) *S3UploadService {
	return &S3UploadService{
		logger: logger,
		client: client,
		cfg:    cfg,
	}
}

// UploadImage stores one image and returns its public URL. Any failure of
// the external store surfaces as types.ErrUploadFailed.
func (s *S3UploadService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	l := s.logger.With(slog.String("method", "UploadImage"), slog.String("filename", filename))

	key := randomStorageKey(filename)
	bucket := s.cfg.Bucket

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	metrics.Get().UploadDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().UploadErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Image store rejected upload", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", types.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), key)
	l.InfoContext(ctx, "Image uploaded", slog.String("url", url))
	return url, nil
}

// randomStorageKey partitions objects by date and keeps the original
// extension so the store serves a sensible content type.
func randomStorageKey(filename string) string {
	d := time.Now()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("listings/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
