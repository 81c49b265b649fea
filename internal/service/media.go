package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"moments_api/internal/config"
	"moments_api/internal/model"
)

// ObjectStore stores uploaded image bytes and serves them from a public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// R2Store is an ObjectStore backed by Cloudflare R2 through its S3-compatible API.
type R2Store struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewR2Store constructs an S3-compatible client for Cloudflare R2.
func NewR2Store(ctx context.Context, cfg *config.Config) (*R2Store, error) {
	if !cfg.MediaConfigured() {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

func (s *R2Store) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to r2: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

func (s *R2Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}

// MediaService validates image uploads and writes them to the object store.
// A nil store disables uploads.
type MediaService struct {
	store ObjectStore
}

func NewMediaService(store ObjectStore) *MediaService {
	return &MediaService{store: store}
}

// UploadPostImage enforces the post image size and dimension limits and
// stores the file unchanged.
func (s *MediaService) UploadPostImage(ctx context.Context, upload *model.ImageUpload) (*model.UploadResult, error) {
	if s == nil || s.store == nil {
		return nil, model.ErrUploadsDisabled
	}

	_, contentType, err := decodeImage(upload, model.MaxPostImageSizeBytes, model.MaxPostImageDimension)
	if err != nil {
		return nil, err
	}

	ext, _ := model.ImageExtension(contentType)
	key := fmt.Sprintf("%s/%s%s", model.PostImageFolder, uuid.NewString(), ext)

	url, err := s.store.Put(ctx, key, upload.Data, contentType, model.ImageCacheControl)
	if err != nil {
		return nil, err
	}
	return &model.UploadResult{URL: url, Key: key}, nil
}

// UploadProfileImage normalizes the image to a square JPEG before storing it.
func (s *MediaService) UploadProfileImage(ctx context.Context, upload *model.ImageUpload) (*model.UploadResult, error) {
	if s == nil || s.store == nil {
		return nil, model.ErrUploadsDisabled
	}

	img, _, err := decodeImage(upload, model.MaxProfileImageSizeBytes, model.MaxProfileImageDimension)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := fillJPEG(img, model.ProfileImageSize, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.jpg", model.ProfileImageFolder, uuid.NewString())
	url, err := s.store.Put(ctx, key, jpegBytes, model.ContentTypeJPEG, model.ImageCacheControl)
	if err != nil {
		return nil, err
	}
	return &model.UploadResult{URL: url, Key: key}, nil
}

// Remove deletes a previously uploaded object. Failures are logged and
// swallowed; a dangling object never fails the request that replaced it.
func (s *MediaService) Remove(ctx context.Context, key *string) {
	if s == nil || s.store == nil || key == nil || *key == "" {
		return
	}
	if err := s.store.Delete(ctx, *key); err != nil {
		logrus.WithError(err).WithField("key", *key).Warn("Failed to delete media object")
	}
}

// decodeImage checks size, type and the dimensions declared in the header,
// then decodes the upload. Pixels are only allocated for accepted images.
func decodeImage(upload *model.ImageUpload, maxSize, maxDimension int) (image.Image, string, error) {
	if upload.Size > int64(maxSize) || len(upload.Data) > maxSize {
		return nil, "", model.NewValidationError("image", fmt.Sprintf("Image size larger than %dMB", maxSize/(1024*1024)))
	}

	// Sniffing does not recognise TIFF, so the declared type is the fallback.
	contentType := baseContentType(http.DetectContentType(upload.Data))
	if _, ok := model.ImageExtension(contentType); !ok {
		contentType = baseContentType(upload.ContentType)
	}
	if _, ok := model.ImageExtension(contentType); !ok {
		return nil, "", errInvalidImage
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, "", errInvalidImage
	}
	if err := checkDimensions(header.Width, header.Height, maxDimension); err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, "", errInvalidImage
	}
	return img, contentType, nil
}

var errInvalidImage = model.NewValidationError("image",
	"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")

func baseContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func checkDimensions(width, height, max int) error {
	if width > max {
		return model.NewValidationError("image", fmt.Sprintf("Image width greater than %dpx", max))
	}
	if height > max {
		return model.NewValidationError("image", fmt.Sprintf("Image height greater than %dpx", max))
	}
	return nil
}

// fillJPEG centers/crops to a size x size square and encodes as JPEG.
func fillJPEG(img image.Image, size, quality int) ([]byte, error) {
	resized := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
