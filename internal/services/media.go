package services

import (
	"context"
	"fmt"
	"time"

	appconfig "cardquest/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const artURLExpiry = 15 * time.Minute

// MediaService resolves catalog card artwork keys into presigned S3 GET
// URLs for clients to render. When no bucket is configured it stays nil and
// callers fall back to empty art URLs.
type MediaService struct {
	presigner *s3.PresignClient
	bucket    string
}

// NewMediaService creates a new media service, or nil when S3 is not
// configured.
func NewMediaService(cfg appconfig.AWSConfig) (*MediaService, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &MediaService{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
	}, nil
}

// ArtURL returns a presigned GET URL for a card artwork key. Failures
// degrade to an empty URL; artwork is cosmetic.
func (s *MediaService) ArtURL(ctx context.Context, artKey *string) string {
	if s == nil || artKey == nil || *artKey == "" {
		return ""
	}

	request, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(*artKey),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = artURLExpiry
	})
	if err != nil {
		log.Error().Err(err).Str("art_key", *artKey).Msg("Failed to presign art URL")
		return ""
	}

	return request.URL
}
