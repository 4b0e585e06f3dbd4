package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "returns-backend/internal/config"
	"returns-backend/internal/timeutil"
)

// ArchiveService uploads generated documents to an S3-compatible bucket
// (S3 or R2). A nil service is valid and archives nothing, so the rest
// of the pipeline runs unchanged when no bucket is configured.
type ArchiveService struct {
	client *s3.Client
	bucket string
}

// NewArchiveService builds the client from the archive config, or
// returns nil when no bucket is configured.
func NewArchiveService(ctx context.Context, cfg *appconfig.Config) (*ArchiveService, error) {
	if cfg.Archive.Bucket == "" || cfg.Archive.AccessKey == "" {
		log.Printf("[Archive] No bucket configured, document archiving disabled")
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Archive.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
		}
	})

	log.Printf("[Archive] Archiving documents to bucket %s", cfg.Archive.Bucket)
	return &ArchiveService{client: client, bucket: cfg.Archive.Bucket}, nil
}

// StorePDF uploads a rendered document under documents/{year}/{name}.pdf.
// Failures are logged and returned but callers treat archiving as
// best-effort; the document was already delivered to the requester.
func (s *ArchiveService) StorePDF(ctx context.Context, name string, data []byte) error {
	if s == nil {
		return nil
	}

	key := fmt.Sprintf("documents/%d/%s.pdf", timeutil.Now().Year(), name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		log.Printf("[Archive] Upload of %s failed: %v", key, err)
		return fmt.Errorf("archive %s: %w", key, err)
	}

	log.Printf("[Archive] Stored %s (%d bytes)", key, len(data))
	return nil
}
