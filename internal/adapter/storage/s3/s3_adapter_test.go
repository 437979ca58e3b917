package s3

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *S3Storage {
	t.Helper()
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
	})
	require.NoError(t, err)
	return &S3Storage{client: client, bucket: "village-uploads", logger: logger.NewNop()}
}

func TestS3Storage_ObjectURLRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	url := s.objectURL("cars/abc.jpg")
	assert.Equal(t, "http://localhost:9000/village-uploads/cars/abc.jpg", url)

	key, ok := s.objectKey(url)
	require.True(t, ok)
	assert.Equal(t, "cars/abc.jpg", key)
}

func TestS3Storage_RejectsForeignURLs(t *testing.T) {
	s := newTestStorage(t)

	for _, stored := range []string{
		"uploads/cars/abc.jpg",
		"http://localhost:9000/other-bucket/cars/abc.jpg",
		"https://cdn.example.com/village-uploads/cars/abc.jpg",
	} {
		_, ok := s.objectKey(stored)
		assert.False(t, ok, stored)
		assert.Error(t, s.Remove(context.Background(), stored), stored)
	}
}
