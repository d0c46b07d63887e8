package config

import "time"

// S3Config holds configuration for the rendition bucket
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	DisableSSL      bool
	ForcePathStyle  bool
	MaxRetries      int
	BucketName      string

	// RenditionPrefix is the key prefix under which processed files are stored
	RenditionPrefix string
	// PresignLifetime bounds the validity of links handed out for renditions
	PresignLifetime time.Duration
}

// LoadS3Config loads the bucket settings, nil when no credentials are configured
func LoadS3Config() *S3Config {
	accessKey := getEnv("AWS_ACCESS_KEY_ID", "")
	secretKey := getEnv("AWS_SECRET_ACCESS_KEY", "")
	if accessKey == "" || secretKey == "" {
		return nil
	}

	return &S3Config{
		Region:          getEnv("AWS_REGION", "us-east-1"),
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		DisableSSL:      getEnvAsBool("S3_DISABLE_SSL", false),
		ForcePathStyle:  getEnvAsBool("S3_FORCE_PATH_STYLE", false),
		MaxRetries:      getEnvAsInt("S3_MAX_RETRIES", 3),
		BucketName:      getEnv("S3_BUCKET_NAME", "canto-renditions"),
		RenditionPrefix: getEnv("S3_RENDITION_PREFIX", "processed"),
		PresignLifetime: getEnvAsDuration("S3_PRESIGN_LIFETIME", time.Hour),
	}
}
