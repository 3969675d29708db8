package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/s21platform/group-chat-service/internal/config"
)

type Client struct {
	uploader      *s3manager.Uploader
	bucket        string
	publicBaseURL string
}

func New(cfg *config.Config) (*Client, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Media.Region),
	}
	if cfg.Media.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Media.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &Client{
		uploader:      s3manager.NewUploader(sess),
		bucket:        cfg.Media.Bucket,
		publicBaseURL: strings.TrimRight(cfg.Media.PublicBaseURL, "/"),
	}, nil
}

// Put uploads body under key and returns the URL clients fetch it from.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	result, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if c.publicBaseURL != "" {
		return c.publicBaseURL + "/" + key, nil
	}
	return result.Location, nil
}
