package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"transferScope/internal/model"
)

// StdoutPath selects standard output instead of a file.
const StdoutPath = "-"

// JsonlStorage writes transfer events as JSON lines, appending to a file or
// streaming to an io.Writer.
type JsonlStorage struct {
	path string
	out  io.Writer
	mu   sync.Mutex
}

// NewJsonlStorage appends to the file at path, or writes to stdout for "-".
func NewJsonlStorage(path string) *JsonlStorage {
	if path == StdoutPath {
		return &JsonlStorage{out: os.Stdout}
	}
	return &JsonlStorage{path: path}
}

// NewJsonlWriter writes every batch to w.
func NewJsonlWriter(w io.Writer) *JsonlStorage {
	return &JsonlStorage{out: w}
}

// PutTransferBatch appends a batch of events as JSON lines.
func (s *JsonlStorage) PutTransferBatch(_ context.Context, events []model.EmittedEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out != nil {
		return writeLines(s.out, events)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	return writeLines(file, events)
}

func writeLines(w io.Writer, events []model.EmittedEvent) error {
	writer := bufio.NewWriter(w)
	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal transfer event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write transfer event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
