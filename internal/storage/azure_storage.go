package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureStore keeps uploads in an Azure Blob Storage container. Used when
// STORAGE_BACKEND=azure; the local flat directory is the default.
type AzureStore struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzureStore builds a blob-backed store from shared-key credentials.
func NewAzureStore(accountName, accountKey, container string) (*AzureStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureStore{
		client:    client,
		account:   accountName,
		container: container,
	}, nil
}

// Save stores raw image bytes under the given filename
func (s *AzureStore) Save(ctx context.Context, filename string, data []byte) error {
	if _, err := s.client.UploadBuffer(ctx, s.container, filename, data, nil); err != nil {
		return fmt.Errorf("blob upload failed: %w", err)
	}
	return nil
}

// Remove deletes a stored image; removing a missing blob is not an error
func (s *AzureStore) Remove(ctx context.Context, filename string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, filename, nil); err != nil {
		// Deleting an already-gone blob should behave like the local store
		if strings.Contains(err.Error(), "BlobNotFound") {
			return nil
		}
		return fmt.Errorf("blob delete failed: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored blob
func (s *AzureStore) URL(filename string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.account, s.container, filename)
}
