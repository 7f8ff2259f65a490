package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tubetext/internal/domain"
)

// Store persists a pool's refresh snapshot between runs. Load returns
// (nil, nil) when no record exists.
type Store interface {
	Load(ctx context.Context) (*domain.CacheRecord, error)
	Save(ctx context.Context, record domain.CacheRecord) error
}

// FileStore keeps the cache record as a JSON file. Reads and writes are not
// file-locked: processes sharing a cache directory race last-writer-wins.
type FileStore struct {
	Path string
}

func (s *FileStore) Load(_ context.Context) (*domain.CacheRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read proxy cache %s: %w", s.Path, err)
	}

	var record domain.CacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode proxy cache %s: %w", s.Path, err)
	}
	return &record, nil
}

func (s *FileStore) Save(_ context.Context, record domain.CacheRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode proxy cache: %w", err)
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("create cache directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write proxy cache %s: %w", s.Path, err)
	}
	return nil
}
