package utils

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Storage keeps uploads in a Cloudflare R2 bucket through the S3 API.
// URLs handed to clients are presigned GETs.
type R2Storage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	urlTTL     time.Duration
}

var _ AvatarStorage = (*R2Storage)(nil)

// NewR2Storage builds a client for endpoint
// "https://<account-id>.r2.cloudflarestorage.com".
func NewR2Storage(accessKeyID, secretAccessKey, endpoint, bucketName string, urlTTL time.Duration) *R2Storage {
	cfg := aws.Config{
		Region:       "auto",
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		BaseEndpoint: aws.String(endpoint),
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// R2 requires path-style addressing
		o.UsePathStyle = true
	})
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	return &R2Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		urlTTL:     urlTTL,
	}
}

func (rs *R2Storage) SaveFile(ctx context.Context, subDir, originalFilename string, reader io.Reader) (string, error) {
	key := subDir + "/" + uniqueName(originalFilename)
	_, err := rs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(rs.bucketName),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return "", fmt.Errorf("upload to r2: %w", err)
	}
	return key, nil
}

func (rs *R2Storage) DeleteFile(ctx context.Context, key string) error {
	_, err := rs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(rs.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from r2: %w", err)
	}
	return nil
}

// URL returns a presigned GET URL valid for the configured TTL.
func (rs *R2Storage) URL(ctx context.Context, key string) (string, error) {
	req, err := rs.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(rs.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presign url: %w", err)
	}
	return req.URL, nil
}
