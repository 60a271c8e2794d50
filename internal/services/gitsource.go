package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"gopkg.in/yaml.v2"

	"github.com/ortelius/cve-catalog/database"
)

// GitSourceConfig describes one advisory repository to sync from.
type GitSourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Subpath string `yaml:"subpath"`
}

// SourcesFile is the optional YAML file listing advisory repositories.
type SourcesFile struct {
	Sources []GitSourceConfig `yaml:"sources"`
}

// LoadSourcesFile parses a sources YAML file.
func LoadSourcesFile(path string) (*SourcesFile, error) {
	raw, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	var file SourcesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	return &file, nil
}

// ErrUpToDate reports that the repository head matches the stored cursor,
// so there is nothing new to ingest.
var ErrUpToDate = errors.New("source is up to date")

// GitSource clones an advisory repository at depth 1 and walks its JSON
// documents. The head commit hash is kept in the sync collection so an
// unchanged repository is skipped on the next run.
type GitSource struct {
	Config GitSourceConfig
	DB     database.DBConnection
}

// Walk implements DocumentSource. It returns ErrUpToDate when the clone
// head equals the stored cursor. On success the cursor is advanced only
// after the walk completes, so a failed run is retried from scratch.
func (s GitSource) Walk(ctx context.Context, fn func(path string, raw []byte) error) error {
	if s.Config.URL == "" {
		return fmt.Errorf("git source %q has no url", s.Config.Name)
	}

	tempDir, err := os.MkdirTemp("", "advisory-sync-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	opts := &git.CloneOptions{
		URL:      s.Config.URL,
		Depth:    1,
		Progress: nil,
	}
	if s.Config.Token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: "oauth2",
			Password: s.Config.Token,
		}
	}

	repo, err := git.PlainCloneContext(ctx, tempDir, false, opts)
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", s.Config.URL, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve head of %s: %w", s.Config.URL, err)
	}
	commit := head.Hash().String()

	if state, err := s.DB.GetSyncState(ctx, s.sourceName()); err == nil && state.Cursor == commit {
		return ErrUpToDate
	}

	root := tempDir
	if s.Config.Subpath != "" {
		root = filepath.Join(tempDir, s.Config.Subpath)
	}

	if err := (DirSource{Root: root}).Walk(ctx, fn); err != nil {
		return err
	}

	return s.DB.SaveSyncState(ctx, database.SyncState{
		Source: s.sourceName(),
		Cursor: commit,
	})
}

func (s GitSource) sourceName() string {
	if s.Config.Name != "" {
		return s.Config.Name
	}
	return s.Config.URL
}
