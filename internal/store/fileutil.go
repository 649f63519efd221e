package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssdajoker/sologit/internal/errs"
)

// writeAtomic writes data to path by writing a temp file in the same
// directory, then renaming over the target. This guarantees that readers
// never observe a partially written file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.StoreError{Path: dir, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &errs.StoreError{Path: dir, Cause: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &errs.StoreError{Path: tmpName, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &errs.StoreError{Path: tmpName, Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &errs.StoreError{Path: path, Cause: fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)}
	}
	tmpName = ""
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &errs.StoreError{Path: path, Cause: err}
	}
	data = append(data, '\n')
	return writeAtomic(path, data)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &errs.StoreError{Path: path, Cause: err}
	}
	return nil
}
