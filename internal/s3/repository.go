package s3

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

type Option func(*Repository)

func WithRegion(region string) Option {
	return func(r *Repository) {
		r.Region = region
	}
}

func WithBucket(bucket string) Option {
	return func(r *Repository) {
		r.Bucket = bucket
	}
}

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.Prefix = prefix
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

func WithForcePathStyle(forcePathStyle bool) Option {
	return func(r *Repository) {
		r.ForcePathStyle = forcePathStyle
	}
}

func WithEndpoint(endpoint string) Option {
	return func(r *Repository) {
		r.Endpoint = endpoint
	}
}

type Repository struct {
	logger   *zap.Logger
	uploader *s3manager.Uploader
	client   *awss3.S3

	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	ForcePathStyle bool
}

func New(opts ...Option) (*Repository, error) {
	r := &Repository{
		logger: zap.NewNop(),
	}

	for _, o := range opts {
		o(r)
	}

	if r.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	awsConfig := &aws.Config{
		S3ForcePathStyle: aws.Bool(r.ForcePathStyle),
	}
	if r.Region != "" {
		awsConfig.Region = aws.String(r.Region)
	}
	if r.Endpoint != "" {
		awsConfig.Endpoint = aws.String(r.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("s3: creating session: %w", err)
	}
	r.uploader = s3manager.NewUploader(sess)
	r.client = awss3.New(sess)

	return r, nil
}

func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	objPath := filepath.Join(
		r.Prefix,
		key,
	)

	r.logger.Debug(
		"s3 write",
		zap.String("key", key),
		zap.String("prefix", r.Prefix),
		zap.String("object_path", objPath),
		zap.String("bucket", r.Bucket),
	)

	_, err := r.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(objPath),

		// io.ReadSeeker lets the uploader optimize memory for large
		// content; a plain io.Reader gets buffered per part.
		Body: bufio.NewReader(reader),
	})
	return err
}

func (r *Repository) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	objPath := filepath.Join(
		r.Prefix,
		key,
	)

	r.logger.Debug(
		"s3 read",
		zap.String("object_path", objPath),
		zap.String("bucket", r.Bucket),
	)

	out, err := r.client.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(objPath),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// ParseURL splits an s3://bucket/key/path URL into bucket and key.
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("s3: parsing url %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("s3: url %q must use the s3:// scheme", raw)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("s3: url %q is missing a bucket", raw)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}
