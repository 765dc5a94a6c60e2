package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore saves binary objects (item images) and returns a public URL for
// each one.
type BlobStore interface {
	Save(name string, data []byte) (string, error)
}

// DiskBlobStore keeps blobs on the local filesystem under a single
// directory, served as static files under baseURL.
type DiskBlobStore struct {
	dir     string
	baseURL string
}

// NewDiskBlobStore creates the storage directory if needed.
func NewDiskBlobStore(dir, baseURL string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DiskBlobStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes the blob and returns its public URL. The name is flattened to
// its base so callers cannot escape the storage directory.
func (d *DiskBlobStore) Save(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", name, err)
	}
	return d.baseURL + "/" + name, nil
}
