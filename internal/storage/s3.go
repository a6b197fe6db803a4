package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Storage implements Storage for any S3-compatible service
// (Hetzner Object Storage, Cloudflare R2, MinIO, AWS).
type S3Storage struct {
	name           string
	client         s3iface.S3API
	uploader       *s3manager.Uploader
	bucket         string
	endpoint       string
	publicEndpoint string
}

// NewS3Storage creates a path-style S3 client bound to one bucket
func NewS3Storage(cfg Config) (*S3Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for s3 storage")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for s3 storage %q", cfg.Name)
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsConfig := &aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}

	publicEndpoint := cfg.PublicEndpoint
	if publicEndpoint == "" {
		publicEndpoint = cfg.Endpoint
	}

	return &S3Storage{
		name:           cfg.Name,
		client:         s3.New(sess),
		uploader:       s3manager.NewUploader(sess),
		bucket:         cfg.Bucket,
		endpoint:       strings.TrimRight(cfg.Endpoint, "/"),
		publicEndpoint: strings.TrimRight(publicEndpoint, "/"),
	}, nil
}

func (s *S3Storage) Name() string {
	return s.name
}

// Put uploads an object
func (s *S3Storage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

// Get retrieves an object
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get from s3: %w", err)
	}
	return result.Body, nil
}

// Delete removes an object
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

// Exists checks for the object with a HEAD request
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.head(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MimeType returns the Content-Type recorded for the object
func (s *S3Storage) MimeType(ctx context.Context, key string) (string, error) {
	out, err := s.head(ctx, key)
	if err != nil {
		return "", err
	}
	return aws.StringValue(out.ContentType), nil
}

func (s *S3Storage) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to head s3 object: %w", err)
	}
	return out, nil
}

// URL returns endpoint/bucket/key
func (s *S3Storage) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucket, key)
}

// PresignGet returns a temporary signed GET URL
func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return signed, nil
}

// KeyFromURL accepts path-style URLs (endpoint/bucket/key) of this bucket.
// Signed URLs are issued on the API endpoint, public ones on the public endpoint.
func (s *S3Storage) KeyFromURL(rawURL string) (string, bool) {
	if key, ok := keyFromURL(rawURL, s.endpoint, s.bucket); ok {
		return key, true
	}
	return keyFromURL(rawURL, s.publicEndpoint, s.bucket)
}

func keyFromURL(rawURL, endpoint, bucket string) (string, bool) {
	if endpoint == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return "", false
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}

	prefix := strings.TrimRight(base.Path, "/")
	if prefix != "" && u.Path != prefix && !strings.HasPrefix(u.Path, prefix+"/") {
		return "", false
	}

	key := strings.TrimPrefix(strings.TrimPrefix(u.Path, prefix), "/")
	if bucket != "" {
		if !strings.HasPrefix(key, bucket+"/") {
			return "", false
		}
		key = strings.TrimPrefix(key, bucket+"/")
	}
	if key == "" {
		return "", false
	}
	return key, true
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	var rerr awserr.RequestFailure
	if errors.As(err, &rerr) && rerr.StatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
