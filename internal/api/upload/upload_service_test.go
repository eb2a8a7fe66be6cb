package upload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/homefindr/estate-api/config"
	"github.com/homefindr/estate-api/internal/types"
)

// MockObjectPutter is a mock implementation of the ObjectPutter interface
type MockObjectPutter struct {
	mock.Mock
}

func (m *MockObjectPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		Bucket:        "estate-images",
		PublicBaseURL: "https://img.example.com/",
	}
}

func TestUploadImage(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockClient := new(MockObjectPutter)
		service := NewS3UploadServiceWithClient(mockClient, testUploadConfig(), logger)
		ctx := context.Background()

		var storedKey string
		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			storedKey = *in.Key
			return *in.Bucket == "estate-images" &&
				*in.ContentType == "image/jpeg" &&
				strings.HasPrefix(*in.Key, "listings/") &&
				strings.HasSuffix(*in.Key, ".jpg")
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		url, err := service.UploadImage(ctx, "house.JPG", "image/jpeg", strings.NewReader("fake-bytes"))

		assert.NoError(t, err)
		assert.Equal(t, "https://img.example.com/"+storedKey, url)
		mockClient.AssertExpectations(t)
	})

	t.Run("KeysAreUniquePerUpload", func(t *testing.T) {
		mockClient := new(MockObjectPutter)
		service := NewS3UploadServiceWithClient(mockClient, testUploadConfig(), logger)
		ctx := context.Background()

		mockClient.On("PutObject", mock.Anything, mock.Anything).
			Return(&s3.PutObjectOutput{}, nil).Twice()

		first, err := service.UploadImage(ctx, "house.jpg", "image/jpeg", strings.NewReader("a"))
		assert.NoError(t, err)
		second, err := service.UploadImage(ctx, "house.jpg", "image/jpeg", strings.NewReader("b"))
		assert.NoError(t, err)

		assert.NotEqual(t, first, second)
		mockClient.AssertExpectations(t)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		mockClient := new(MockObjectPutter)
		service := NewS3UploadServiceWithClient(mockClient, testUploadConfig(), logger)
		ctx := context.Background()

		mockClient.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused")).Once()

		url, err := service.UploadImage(ctx, "house.jpg", "image/jpeg", strings.NewReader("fake-bytes"))

		assert.Error(t, err)
		assert.Empty(t, url)
		assert.ErrorIs(t, err, types.ErrUploadFailed)
		mockClient.AssertExpectations(t)
	})
}
