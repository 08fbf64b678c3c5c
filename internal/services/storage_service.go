// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/config"
)

const (
	productImageFolder  = "products"
	maxProductImageSize = 10 * 1024 * 1024 // 10MB
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type StorageService struct {
	s3Client s3iface.S3API
	config   config.AWSConfig
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg config.AWSConfig) (*StorageService, error) {
	if cfg.AccessKeyID == "" {
		// Files go to the local upload directory
		return &StorageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewStorageServiceWithClient(cfg, s3.New(sess)), nil
}

func NewStorageServiceWithClient(cfg config.AWSConfig, client s3iface.S3API) *StorageService {
	return &StorageService{s3Client: client, config: cfg}
}

// UploadProductImage stores an image and returns its public URL. The content
// type is sniffed from the bytes, not taken from the client.
func (s *StorageService) UploadProductImage(ctx context.Context, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxProductImageSize+1))
	if err != nil {
		return nil, apperrors.Wrap(err, "read upload")
	}
	if len(data) == 0 {
		return nil, apperrors.ErrValidationFailed.WithDetails("image is empty")
	}
	if len(data) > maxProductImageSize {
		return nil, apperrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("image exceeds maximum size of %d bytes", maxProductImageSize))
	}

	mimeType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[mimeType]
	if !ok {
		return nil, apperrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unsupported image type %s", mimeType))
	}

	key := generateObjectKey(productImageFolder, ext)
	if s.s3Client != nil {
		return s.uploadToS3(ctx, data, key, mimeType)
	}
	return s.uploadToLocal(data, key, mimeType)
}

func (s *StorageService) uploadToS3(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "upload to S3")
	}

	return &UploadResult{
		URL:      s.publicURL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(data []byte, key, contentType string) (*UploadResult, error) {
	target := filepath.Join(s.config.LocalUploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, apperrors.Wrap(err, "create upload directory")
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, apperrors.Wrap(err, "write upload")
	}

	return &UploadResult{
		URL:      strings.TrimRight(s.config.LocalBaseURL, "/") + "/" + key,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

// DeleteImage removes a stored image by its public URL. URLs this service
// did not issue are ignored.
func (s *StorageService) DeleteImage(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	if s.s3Client == nil {
		err := os.Remove(filepath.Join(s.config.LocalUploadDir, filepath.FromSlash(key)))
		if err != nil && !os.IsNotExist(err) {
			return apperrors.Wrap(err, "delete local upload")
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.Wrap(err, "delete from S3")
	}
	return nil
}

func (s *StorageService) keyFromURL(url string) (string, bool) {
	base := s.publicURL("")
	if s.s3Client == nil {
		base = strings.TrimRight(s.config.LocalBaseURL, "/") + "/"
	}
	if !strings.HasPrefix(url, base) {
		return "", false
	}

	key := strings.TrimPrefix(url, base)
	if key == "" || strings.Contains(key, "..") {
		logrus.WithField("url", url).Warn("Refusing to delete suspicious image key")
		return "", false
	}
	return key, true
}

func (s *StorageService) publicURL(key string) string {
	if s.config.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.Region, key)
}

func generateObjectKey(folder, ext string) string {
	timestamp := time.Now().Format("20060102")
	return path.Join(folder, fmt.Sprintf("%s_%s%s", timestamp, uuid.New().String(), ext))
}
