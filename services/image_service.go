package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/kendall-kelly/formalwear-orders-api/utils"
)

// ImageService stores the reference photo of an order
type ImageService interface {
	// UploadImage validates and stores a photo of the order, returns the storage key
	UploadImage(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing a stored photo
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes a photo from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

var imageServiceInstance ImageService

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = &S3ImageService{s3Service: s3Service}
	return imageServiceInstance
}

// UploadImage validates and uploads a photo to S3 under orders/<id>/
func (s *S3ImageService) UploadImage(ctx context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key := fmt.Sprintf("orders/%d/%s", orderID, utils.PhotoName(orderID, fileHeader.Filename))
	if err := s.s3Service.UploadFile(ctx, fileHeader, key); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL generates a presigned URL for accessing a photo
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes a photo from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}
	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// LocalImageService keeps photos on local disk, used when no bucket is configured
type LocalImageService struct {
	dir string
}

// InitLocalImageService initializes the image service with a disk backend
func InitLocalImageService(dir string) ImageService {
	imageServiceInstance = NewLocalImageService(dir)
	return imageServiceInstance
}

// NewLocalImageService returns a disk-backed image service rooted at dir
func NewLocalImageService(dir string) *LocalImageService {
	return &LocalImageService{dir: dir}
}

// Dir returns the directory photos are written to
func (s *LocalImageService) Dir() string {
	return s.dir
}

// UploadImage validates and writes a photo to disk
func (s *LocalImageService) UploadImage(_ context.Context, orderID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	name := utils.PhotoName(orderID, fileHeader.Filename)
	if err := utils.SaveUploadedFile(fileHeader, s.dir, name); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return name, nil
}

// GetImageURL returns the API path serving the photo
func (s *LocalImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	return utils.GetImageURL(imageKey), nil
}

// DeleteImage removes a photo from disk. A missing file is not an error.
func (s *LocalImageService) DeleteImage(_ context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(imageKey)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
