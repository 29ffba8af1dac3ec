package factory

import (
	"fmt"

	"go-outfit-advisor/internal/config"
	"go-outfit-advisor/internal/storage"
)

// StorageFactory creates upload store implementations
type StorageFactory interface {
	CreateStore(cfg *config.Config) (storage.ImageStore, error)
}

// storageFactory implements StorageFactory
type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateStore builds the upload store selected by STORAGE_BACKEND
func (f *storageFactory) CreateStore(cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendLocal:
		return storage.NewLocalStore(cfg.UploadDir)
	case config.StorageBackendAzure:
		return storage.NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.StorageBackend)
	}
}
