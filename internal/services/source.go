package services

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DocumentSource yields raw advisory documents in one pass. Implementations
// call fn once per document; returning an error from fn aborts the walk.
type DocumentSource interface {
	Walk(ctx context.Context, fn func(path string, raw []byte) error) error
}

// DirSource walks a directory tree and yields every *.json file.
type DirSource struct {
	Root string
}

// Walk implements DocumentSource.
func (s DirSource) Walk(ctx context.Context, fn func(path string, raw []byte) error) error {
	return filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		raw, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return err
		}
		return fn(path, raw)
	})
}
