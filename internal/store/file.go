package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// BackendFile names the filesystem store.
const BackendFile = "file"

// NewFileStore keeps each collection in <dir>/<collection>.json.
func NewFileStore(dir string) (*KVStore, error) {
	const op = "NewFileStore"

	if dir == "" {
		return nil, NewStoreError(op, BackendFile, ErrInvalidConfiguration, "data directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, WrapStoreError(op, BackendFile, err, "failed to create data directory")
	}
	return newKVStore(BackendFile, fileBlobs{dir: dir}), nil
}

type fileBlobs struct {
	dir string
}

func (f fileBlobs) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f fileBlobs) get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// put writes through a temp file and a rename so a crash never leaves a
// truncated collection behind.
func (f fileBlobs) put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (fileBlobs) close() error { return nil }
