package services

import (
	"context"
	"strings"
	"testing"

	"social-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	input   *s3.PutObjectInput
	expires string
}

func (f *fakePresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = params
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires.String()
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.s3.amazonaws.com/" + aws.ToString(params.Key) + "?X-Amz-Signature=abc",
		Method: "PUT",
	}, nil
}

func TestPresignImageUpload(t *testing.T) {
	presigner := &fakePresigner{}
	svc := &UploadService{presigner: presigner, bucket: "bucket", publicURL: "https://cdn.example.com"}

	res, err := svc.PresignImageUpload(context.Background(), "user-1", UploadRequest{
		Filename:    "Holiday.PNG",
		ContentType: "image/png",
	})
	require.NoError(t, err)

	key := aws.ToString(presigner.input.Key)
	assert.True(t, strings.HasPrefix(key, "posts/user-1/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "bucket", aws.ToString(presigner.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(presigner.input.ContentType))
	assert.Equal(t, "5m0s", presigner.expires)

	assert.Equal(t, "https://cdn.example.com/"+key, res.ImageURL)
	assert.Contains(t, res.UploadURL, key)
	assert.Equal(t, 300, res.ExpiresIn)
}

func TestPresignImageUpload_ExtensionFromContentType(t *testing.T) {
	presigner := &fakePresigner{}
	svc := &UploadService{presigner: presigner, bucket: "bucket", publicURL: "https://cdn.example.com"}

	_, err := svc.PresignImageUpload(context.Background(), "user-1", UploadRequest{Filename: "photo", ContentType: "image/webp"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(aws.ToString(presigner.input.Key), ".webp"))

	_, err = svc.PresignImageUpload(context.Background(), "user-1", UploadRequest{Filename: "photo"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", aws.ToString(presigner.input.ContentType))
	assert.True(t, strings.HasSuffix(aws.ToString(presigner.input.Key), ".jpg"))
}

func TestPresignImageUpload_Invalid(t *testing.T) {
	svc := &UploadService{presigner: &fakePresigner{}, bucket: "bucket"}

	_, err := svc.PresignImageUpload(context.Background(), "user-1", UploadRequest{ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrInvalidUpload)

	_, err = svc.PresignImageUpload(context.Background(), "user-1", UploadRequest{Filename: "a.pdf", ContentType: "application/pdf"})
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		publicBaseURL(config.AWSConfig{PublicURL: "https://cdn.example.com/", S3Bucket: "b"}))
	assert.Equal(t, "http://localhost:9000/b",
		publicBaseURL(config.AWSConfig{Endpoint: "http://localhost:9000", S3Bucket: "b"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com",
		publicBaseURL(config.AWSConfig{Region: "eu-west-1", S3Bucket: "b"}))
}
