package assets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// S3API is the subset of *s3.Client the store calls.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// NewS3Client builds a client for AWS or any S3-compatible endpoint (MinIO).
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type s3Store struct {
	client S3API
	bucket string
	logger *zap.Logger
}

func NewS3Store(client S3API, bucket string, logger ...*zap.Logger) Store {
	l := zap.L().Named("assets.s3")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assets.s3")
	}
	return &s3Store{client: client, bucket: bucket, logger: l}
}

// DeleteForOnboarding removes every object under the onboarding prefix and
// returns how many were deleted.
func (s *s3Store) DeleteForOnboarding(ctx context.Context, onboardingID uuid.UUID) (int, error) {
	prefix := Prefix(onboardingID)
	deleted := 0

	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return deleted, fmt.Errorf("list %s: %w", prefix, err)
		}

		if len(page.Contents) > 0 {
			ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
			for _, obj := range page.Contents {
				ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
			}

			out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return deleted, fmt.Errorf("delete %s: %w", prefix, err)
			}
			if len(out.Errors) > 0 {
				first := out.Errors[0]
				return deleted, fmt.Errorf("delete %s: %d objects failed, first %s: %s",
					prefix, len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
			}
			deleted += len(ids)
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}

	s.logger.Info("onboarding assets deleted",
		zap.String("onboarding_id", onboardingID.String()),
		zap.Int("objects", deleted),
	)
	return deleted, nil
}
