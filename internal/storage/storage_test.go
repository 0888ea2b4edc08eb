package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"hackernews/internal/config"
)

func TestNewMinIO_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewMinIO(ctx, config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinIO(ctx, config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(ctx, config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "minio bucket is required")
}

func TestTranslateErr(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, translateErr(missing), ErrObjectNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	assert.NotErrorIs(t, translateErr(denied), ErrObjectNotFound)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translateErr(plain))
}
