package s3

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/jacobsenj/canto-fal/pkg/config"
)

// NewS3Connection opens an S3 API for the rendition bucket. A custom endpoint
// selects an S3 compatible store such as MinIO.
func NewS3Connection(cfg *config.S3Config) (*s3.S3, error) {
	awsConfig := aws.NewConfig().
		WithRegion(cfg.Region).
		WithCredentials(credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")).
		WithMaxRetries(cfg.MaxRetries).
		WithLogger(aws.LoggerFunc(func(args ...interface{}) {
			logrus.WithField("component", "s3").Debug(args...)
		}))

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		awsConfig = awsConfig.WithLogLevel(aws.LogDebugWithRequestErrors)
	}

	if cfg.Endpoint != "" {
		awsConfig = awsConfig.
			WithEndpoint(cfg.Endpoint).
			WithDisableSSL(cfg.DisableSSL).
			WithS3ForcePathStyle(cfg.ForcePathStyle)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}
