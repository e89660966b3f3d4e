package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"transferScope/internal/model"
)

// CheckpointStore persists the last fully processed block.
type CheckpointStore interface {
	Load(ctx context.Context) (model.BlockNumber, bool, error)
	Save(ctx context.Context, block model.BlockNumber) error
}

// Checkpoint is the on-disk record of FileCheckpointStore.
type Checkpoint struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// FileCheckpointStore keeps the checkpoint in a local JSON file.
type FileCheckpointStore struct {
	path string
}

func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

func (c *FileCheckpointStore) Load(context.Context) (model.BlockNumber, bool, error) {
	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return 0, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return 0, false, fmt.Errorf("parse checkpoint: %w", err)
	}

	return model.BlockNumber(cp.LastProcessedBlock), true, nil
}

func (c *FileCheckpointStore) Save(_ context.Context, block model.BlockNumber) error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	cp := Checkpoint{
		LastProcessedBlock: uint64(block),
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	return nil
}

// StateStore is the named state table of a database sink.
// *postgres.Store satisfies it.
type StateStore interface {
	LoadState(ctx context.Context, name string) (model.BlockNumber, bool, error)
	SaveState(ctx context.Context, name string, block model.BlockNumber) error
}

// DBCheckpointStore keeps the checkpoint in the indexer_state table.
type DBCheckpointStore struct {
	Store StateStore
	Name  string
}

func (s *DBCheckpointStore) Load(ctx context.Context) (model.BlockNumber, bool, error) {
	return s.Store.LoadState(ctx, s.Name)
}

func (s *DBCheckpointStore) Save(ctx context.Context, block model.BlockNumber) error {
	return s.Store.SaveState(ctx, s.Name, block)
}
