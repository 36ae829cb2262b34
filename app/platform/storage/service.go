package storage

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/s3/v2"

	"lubd/pkg/utils"
)

// StorageService defines methods for job image storage operations
type StorageService interface {
	// SaveFile saves an uploaded file under the given key
	SaveFile(file *multipart.FileHeader, key string, c *fiber.Ctx) error

	// IsImageExtensionAllowed checks if the filename carries an accepted image extension
	IsImageExtensionAllowed(filename string) bool

	// GenerateKeyName generates a random key name for file storage
	GenerateKeyName() string
}

// storageService implements StorageService interface
type storageService struct {
	storage *s3.Storage
}

// NewStorageService creates a new StorageService
func NewStorageService(storage *s3.Storage) StorageService {
	return &storageService{
		storage: storage,
	}
}

// SaveFile saves an uploaded file under the given key
func (s *storageService) SaveFile(file *multipart.FileHeader, key string, c *fiber.Ctx) error {
	return c.SaveFileToStorage(file, key, s.storage)
}

// IsImageExtensionAllowed checks if the filename carries an accepted image extension
func (s *storageService) IsImageExtensionAllowed(filename string) bool {
	allowedExtensions := []string{"jpg", "jpeg", "png", "gif", "webp"}
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return true
		}
	}
	return false
}

// GenerateKeyName generates a random key name for file storage
func (s *storageService) GenerateKeyName() string {
	return strings.ToLower(utils.GenerateRandomString(16))
}
