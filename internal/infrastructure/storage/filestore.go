package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"voicecollect/internal/domain/profile"
	"voicecollect/internal/pkg/apperrors"
)

// FileStore persists the single customer record as one JSON object in one
// file, overwritten wholesale on every save. Writes go through a temp file
// in the same directory followed by a rename, so a concurrent reader sees
// either the old or the new record, never a torn write.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	logger *slog.Logger
}

var _ profile.Repository = (*FileStore)(nil)

func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: profile file path cannot be empty", apperrors.ErrInvalidArgument)
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &FileStore{
		path:   path,
		logger: logger.With("component", "FileStore", "path", path),
	}, nil
}

func (s *FileStore) Save(ctx context.Context, rec *profile.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record cannot be nil", apperrors.ErrInvalidArgument)
	}

	body, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return apperrors.WrapPersistenceError(err, "failed to encode profile record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.WrapPersistenceError(err, "failed to create profile data directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperrors.WrapPersistenceError(err, "failed to create temp profile file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.WrapPersistenceError(err, "failed to write profile record")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.WrapPersistenceError(err, "failed to sync profile record")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.WrapPersistenceError(err, "failed to close temp profile file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.WrapPersistenceError(err, "failed to replace profile file")
	}

	s.logger.InfoContext(ctx, "Profile record written", slog.Int("bytes", len(body)))
	return nil
}

// Load returns apperrors.ErrNoProfile when the file is missing or does not
// parse. Corruption is logged and degraded to absent, not propagated.
func (s *FileStore) Load(ctx context.Context) (*profile.Record, error) {
	s.mu.RLock()
	body, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrNoProfile
		}
		s.logger.WarnContext(ctx, "Profile file unreadable", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrNoProfile, err)
	}

	var rec profile.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		s.logger.WarnContext(ctx, "Profile file corrupted, treating as absent", slog.Any("error", err))
		return nil, fmt.Errorf("%w: corrupt profile file: %w", apperrors.ErrNoProfile, err)
	}

	return &rec, nil
}
