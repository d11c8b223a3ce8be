package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"nexus/nexus/chat"

	"go.uber.org/zap"
)

// FileStore keeps the snapshot as one JSON file on disk. Missing or
// corrupt files count as "no prior state"; writes go through a temp
// file and rename so a crash never leaves a half-written snapshot.
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Load(ctx context.Context) (*chat.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap chat.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("corrupt chat snapshot, starting fresh", zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	if len(snap.Sessions) == 0 {
		return nil, nil
	}
	return &snap, nil
}

func (s *FileStore) Save(ctx context.Context, snap *chat.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
