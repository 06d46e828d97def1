package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds object storage settings. Endpoint targets LocalStack or any
// S3-compatible store when set.
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Object identifies a stored object and where it can be fetched from.
type Object struct {
	Key string
	URL string
}

// S3Uploader puts images into an S3 bucket.
type S3Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Uploader loads the default AWS credential chain and builds an S3 client.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = sdkaws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		}
	}

	return &S3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
	}, nil
}

// Upload stores body under key and returns its public location.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*Object, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        sdkaws.String(u.bucket),
		Key:           sdkaws.String(key),
		Body:          body,
		ContentType:   sdkaws.String(contentType),
		ContentLength: sdkaws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return &Object{Key: key, URL: u.publicBaseURL + "/" + key}, nil
}
