package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client records PutObject calls for testing.
type mockS3Client struct {
	keys        []string
	contentType string
	body        string
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.keys = append(m.keys, aws.ToString(input.Key))
	m.contentType = aws.ToString(input.ContentType)
	data, _ := io.ReadAll(input.Body)
	m.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadReturnsPublicURL(t *testing.T) {
	mock := &mockS3Client{}
	store := NewStore(mock, "easyconsult-media", "https://cdn.example.com/", nil)

	url, err := store.Upload(context.Background(), "avatar.PNG", "image/png", strings.NewReader("img-bytes"))
	require.NoError(t, err)

	require.Len(t, mock.keys, 1)
	assert.True(t, strings.HasPrefix(mock.keys[0], "images/"))
	assert.True(t, strings.HasSuffix(mock.keys[0], ".png"))
	assert.Equal(t, "https://cdn.example.com/"+mock.keys[0], url)
	assert.Equal(t, "image/png", mock.contentType)
	assert.Equal(t, "img-bytes", mock.body)
}

func TestUploadKeysAreUnique(t *testing.T) {
	mock := &mockS3Client{}
	store := NewStore(mock, "easyconsult-media", "https://cdn.example.com", nil)

	_, err := store.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("y"))
	require.NoError(t, err)

	require.Len(t, mock.keys, 2)
	assert.NotEqual(t, mock.keys[0], mock.keys[1])
}

func TestUploadWithoutBucketFails(t *testing.T) {
	store := NewStore(nil, "", "", nil)

	_, err := store.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	assert.Error(t, err)
}
