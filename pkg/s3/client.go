// pkg/s3/client.go
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/jacobsenj/canto-fal/pkg/config"
)

// deleteBatchSize is the object limit of a single DeleteObjects call
const deleteBatchSize = 1000

// Client stores processed renditions in a bucket
type Client struct {
	s3Client   s3iface.S3API
	bucketName string
	prefix     string
}

// NewClient initializes a new S3 client
func NewClient(config *config.S3Config) (*Client, error) {
	s3Client, err := NewS3Connection(config)
	if err != nil {
		return nil, err
	}

	return NewClientWithAPI(s3Client, config.BucketName, config.RenditionPrefix), nil
}

// NewClientWithAPI wraps an existing S3 API, used by tests
func NewClientWithAPI(api s3iface.S3API, bucketName, prefix string) *Client {
	return &Client{
		s3Client:   api,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}
}

// RenditionDirectory is the prefix holding every rendition of one file
func (c *Client) RenditionDirectory(storageID int, fileID uint) string {
	dir := fmt.Sprintf("storages/%d/files/%d/", storageID, fileID)
	if c.prefix != "" {
		dir = c.prefix + "/" + dir
	}
	return dir
}

// RenditionKey is the object key of a single rendition
func (c *Client) RenditionKey(storageID int, fileID uint, name string) string {
	return c.RenditionDirectory(storageID, fileID) + strings.TrimPrefix(name, "/")
}

// PutObject uploads body under key
func (c *Client) PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err := c.s3Client.PutObjectWithContext(ctx, input)
	return err
}

// GetDownloadPresignedURL generates a presigned URL for downloading a rendition
func (c *Client) GetDownloadPresignedURL(key string, expiresIn time.Duration) (string, error) {
	req, _ := c.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiresIn)
	if err != nil {
		return "", err
	}

	return url, nil
}

// ListObjects lists every object below prefix
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucketName),
		Prefix: aws.String(prefix),
	}

	var keys []string
	err := c.s3Client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// DeleteObject deletes an object from S3
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	return err
}

// DeleteDirectory deletes all objects under a directory prefix
func (c *Client) DeleteDirectory(ctx context.Context, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("refusing to delete the whole bucket %s", c.bucketName)
	}
	// Ensure path ends with a slash
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	keys, err := c.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))

		objects := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := c.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucketName),
			Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return err
		}
		if len(out.Errors) > 0 {
			return fmt.Errorf("deleting %s: %s", aws.StringValue(out.Errors[0].Key), aws.StringValue(out.Errors[0].Message))
		}
	}

	return nil
}
