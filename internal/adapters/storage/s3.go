// internal/adapters/storage/s3.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds object storage configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // For MinIO/LocalStack
	UsePathStyle    bool   // For MinIO/LocalStack
}

// SnapshotStore archives raw remote payloads to S3, one object per sync run.
// Snapshots exist for debugging and replay; archive failures never fail a run.
type SnapshotStore struct {
	uploader *manager.Uploader
	bucket   string
	logger   *slog.Logger
}

// NewSnapshotStore creates a new snapshot store
func NewSnapshotStore(ctx context.Context, cfg *S3Config, logger *slog.Logger) (*SnapshotStore, error) {
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = s3.EndpointResolverFromURL(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	store := &SnapshotStore{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		logger:   logger.With(slog.String("storage", "s3")),
	}

	logger.Info("snapshot store initialized",
		slog.String("bucket", cfg.Bucket),
		slog.String("region", cfg.Region))

	return store, nil
}

func buildAWSConfig(ctx context.Context, cfg *S3Config) (aws.Config, error) {
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretAccessKey,
					"",
				),
			),
		)
	}

	return config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
}

// Archive stores one raw inventory payload under a date-partitioned key.
func (s *SnapshotStore) Archive(ctx context.Context, runID string, payload []byte) error {
	key := fmt.Sprintf("snapshots/%s/%s.json", time.Now().UTC().Format("2006/01/02"), runID)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.logger.DebugContext(ctx, "snapshot archived",
		slog.String("key", key),
		slog.Int("bytes", len(payload)))

	return nil
}
