// Package media stores uploaded profile images in S3 and hands back the
// public URL the clients render.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/easyconsult/backend/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads images under a random key so repeated uploads never collide.
type Store struct {
	bucket   string
	baseURL  string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates a media Store. If bucket is empty, uploads fail with an
// explicit error rather than a nil dereference.
func NewStore(s3Client S3API, bucket, baseURL string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		bucket:   bucket,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		s3Client: s3Client,
		logger:   logger,
	}
}

// Enabled reports whether uploads are configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Upload writes the image to S3 and returns its public URL.
func (s *Store) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("media: uploads not configured")
	}

	key := fmt.Sprintf("images/%s%s", uuid.NewString(), strings.ToLower(path.Ext(filename)))
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("media: s3 put %s: %w", key, err)
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, key)
	s.logger.Info("image uploaded", "s3_key", key, "content_type", contentType)
	return url, nil
}
