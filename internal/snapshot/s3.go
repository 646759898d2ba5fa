package snapshot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/saurrx/priced/internal/domain"
)

// S3Config holds connection parameters for an S3-compatible object store
// hosting catalog bundles. Endpoint is optional; set it for MinIO, R2, or
// other compatible providers.
type S3Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	Key            string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// S3Source fetches catalog bundles from object storage.
type S3Source struct {
	downloader *manager.Downloader
	bucket     string
	key        string
}

// NewS3Source builds the S3 client and downloader from the given config.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("snapshot: s3 bucket and key are required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("snapshot: s3 region is required")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &S3Source{
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		key:        cfg.Key,
	}, nil
}

// Fetch downloads and parses the bundle object.
func (s *S3Source) Fetch(ctx context.Context) (domain.Snapshot, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot: download s3://%s/%s: %w", s.bucket, s.key, err)
	}

	snap, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot: parse s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return snap, nil
}

// Describe returns the object location.
func (s *S3Source) Describe() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}
