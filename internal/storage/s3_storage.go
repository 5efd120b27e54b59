package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Alilen9/renthub-sub001/internal/config"
)

// IMediaStorage defines the interface for media object storage. Listing
// drafts and fault reports upload their media through presigned URLs;
// the image worker writes processed objects directly.
type IMediaStorage interface {
	GeneratePresignedPutURL(ctx context.Context, scope, filename, contentType string) (url string, key string, err error)
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// s3Storage implements IMediaStorage.
type s3Storage struct {
	cfg           *config.Config
	client        *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3-backed media storage service.
func NewS3Storage(cfg *config.Config) (IMediaStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &s3Storage{
		cfg:           cfg,
		client:        client,
		presignClient: s3.NewPresignClient(client),
	}, nil
}

// GeneratePresignedPutURL creates a pre-signed URL for uploading an object
// under the given scope (e.g. "listings/<id>" or "faults"). It returns the
// URL and the generated object key.
func (s *s3Storage) GeneratePresignedPutURL(ctx context.Context, scope, filename, contentType string) (string, string, error) {
	key := fmt.Sprintf("uploads/%s/%s_%s", scope, uuid.NewString(), filename)

	presigned, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", key, err)
	}
	return presigned.URL, key, nil
}

// Upload writes an object directly; used by the image processing worker.
func (s *s3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}
