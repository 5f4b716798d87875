package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// Storage is the object-store surface handlers depend on; Client is the
// S3 implementation, tests plug in fakes.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// Client stores user file uploads and archived data exports in an S3
// bucket.
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// NewClient creates a new object store client
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 storage is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// Path-style URLs for S3-compatible services
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
	}

	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[ObjectStore] Successfully initialized S3 client for bucket: %s", cfg.GetBucketName())
	return client, nil
}

// testConnection tests the S3 connection by checking if the bucket exists
func (c *Client) testConnection() error {
	ctx := context.Background()
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})

	if err != nil {
		// If bucket doesn't exist, try to create it (for development)
		if GetAppEnv() != "prod" {
			log.Warnf("[ObjectStore] Bucket %s not found, attempting to create it", bucketName)
			return c.createBucket(bucketName)
		}
		return fmt.Errorf("bucket %s not accessible: %w", bucketName, err)
	}

	return nil
}

// createBucket creates a new S3 bucket (dev/staging only)
func (c *Client) createBucket(bucketName string) error {
	ctx := context.Background()

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}

	// For AWS regions other than us-east-1 the location constraint is
	// required; S3-compatible endpoints reject it.
	if c.config.EndpointURL == "" && c.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.config.Region),
		}
	}

	_, err := c.s3Client.CreateBucket(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}

	log.Infof("[ObjectStore] Successfully created bucket: %s", bucketName)
	return nil
}

// Put uploads an object under the given key.
func (c *Client) Put(ctx context.Context, objectKey string, data []byte, contentType string) error {
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to S3: %w", err)
	}

	log.Infof("[ObjectStore] Successfully stored: s3://%s/%s", bucketName, objectKey)
	return nil
}

// Get downloads an object and returns its bytes and content type.
func (c *Client) Get(ctx context.Context, objectKey string) ([]byte, string, error) {
	bucketName := c.config.GetBucketName()

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download object from S3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object body: %w", err)
	}

	return data, aws.ToString(out.ContentType), nil
}

// Delete removes an object, used for file deletion and after GDPR
// erasure.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	log.Infof("[ObjectStore] Successfully deleted: s3://%s/%s", bucketName, objectKey)
	return nil
}
