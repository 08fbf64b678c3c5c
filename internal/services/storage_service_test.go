package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/config"
)

func pngBytes() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deletes []string
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorage_LocalUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewStorageService(config.AWSConfig{LocalUploadDir: dir, LocalBaseURL: "http://localhost:8080/uploads/"})
	require.NoError(t, err)

	result, err := svc.UploadProductImage(context.Background(), bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.MimeType)
	assert.True(t, strings.HasPrefix(result.URL, "http://localhost:8080/uploads/products/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))

	stored := filepath.Join(dir, filepath.FromSlash(result.Key))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteImage(context.Background(), result.URL))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// Foreign URLs are left alone
	assert.NoError(t, svc.DeleteImage(context.Background(), "https://cdn.example.com/x.png"))
}

func TestStorage_RejectsNonImages(t *testing.T) {
	svc := NewStorageServiceWithClient(config.AWSConfig{LocalUploadDir: t.TempDir()}, nil)

	_, err := svc.UploadProductImage(context.Background(), strings.NewReader("just some text"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.UploadProductImage(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	oversized := io.MultiReader(bytes.NewReader(pngBytes()), bytes.NewReader(make([]byte, maxProductImageSize)))
	_, err = svc.UploadProductImage(context.Background(), oversized)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStorage_S3(t *testing.T) {
	client := &fakeS3{}
	svc := NewStorageServiceWithClient(config.AWSConfig{
		Region:        "us-east-1",
		S3Bucket:      "storefront-assets",
		CloudFrontURL: "https://cdn.example.com/",
	}, client)

	result, err := svc.UploadProductImage(context.Background(), bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	assert.Equal(t, "storefront-assets", aws.StringValue(client.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.StringValue(client.puts[0].ContentType))
	assert.Equal(t, "https://cdn.example.com/"+result.Key, result.URL)

	require.NoError(t, svc.DeleteImage(context.Background(), result.URL))
	assert.Equal(t, []string{result.Key}, client.deletes)

	require.NoError(t, svc.DeleteImage(context.Background(), "https://cdn.example.com/../secrets"))
	assert.Len(t, client.deletes, 1)
}
