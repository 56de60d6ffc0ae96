package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, apiKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &StorageClient{
		client:  storage.NewClient(baseURL+"/storage/v1", apiKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// UploadFile stores data at storagePath, replacing any existing object, and
// returns its public URL.
func (s *StorageClient) UploadFile(storagePath string, data []byte, contentType string) (string, error) {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", storagePath, err)
	}
	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

// DeleteOrderExports removes every export stored for the order.
func (s *StorageClient) DeleteOrderExports(orderID uuid.UUID) error {
	prefix := OrderExportPrefix(orderID)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{Limit: 1000})
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = prefix + f.Name
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete exports: %w", err)
	}
	return nil
}

func OrderExportPrefix(orderID uuid.UUID) string {
	return fmt.Sprintf("orders/%s/", orderID)
}
