// Package r2 archives uploaded study material in a Cloudflare R2 bucket.
package r2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnassess/internal/config"
)

var ErrNotConfigured = errors.New("r2 client not configured")

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client uploads objects to one bucket.
type Client struct {
	s3        putter
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewClient returns (nil, nil) when R2 is not fully configured so callers
// can run with archiving disabled.
func NewClient(ctx context.Context, cfg config.R2, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		logger.Warn("r2 not fully configured, material archiving disabled")
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	logger.Info("r2 client initialized", zap.String("bucket", cfg.BucketName))
	return &Client{s3: client, bucket: cfg.BucketName, publicURL: cfg.PublicURL, logger: logger}, nil
}

// ObjectKey is material/<session>/<upload>/<filename>.
func ObjectKey(sessionID, uploadID uuid.UUID, filename string) string {
	return fmt.Sprintf("material/%s/%s/%s", sessionID, uploadID, path.Base(filepath.ToSlash(filename)))
}

// Upload stores content and returns its public URL.
func (c *Client) Upload(ctx context.Context, sessionID uuid.UUID, filename string, content io.Reader) (string, error) {
	if c == nil || c.s3 == nil {
		return "", ErrNotConfigured
	}

	key := ObjectKey(sessionID, uuid.New(), filename)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        content,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to R2: %w", key, err)
	}

	base, err := url.Parse(c.publicURL)
	if err != nil {
		return "", fmt.Errorf("invalid R2 public base URL: %w", err)
	}
	base.Path = path.Join(base.Path, key)
	c.logger.Info("archived material", zap.String("url", base.String()))
	return base.String(), nil
}
