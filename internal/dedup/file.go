package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const DefaultSeenFile = "seen_jobs.json"

// FileStore keeps the seen set as a JSON array of strings.
type FileStore struct {
	filePath string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultSeenFile
	}
	return &FileStore{filePath: path}
}

func (fs *FileStore) Path() string {
	return fs.filePath
}

// Load reads the file into a SeenSet. Absent or corrupt files load as empty.
func (fs *FileStore) Load(_ context.Context) SeenSet {
	seen := NewSeenSet()

	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read %s: %v", fs.filePath, err)
		}
		return seen
	}
	if len(data) == 0 {
		return seen
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		log.Printf("⚠️ Failed to parse %s, starting with an empty seen set: %v", fs.filePath, err)
		return seen
	}

	for _, l := range links {
		seen.Add(l)
	}
	log.Printf("📋 Loaded %d previously seen links", seen.Len())
	return seen
}

// Save overwrites the file through a temp file and rename, so a crash leaves
// either the old or the new content in place.
func (fs *FileStore) Save(_ context.Context, seen SeenSet) error {
	data, err := json.MarshalIndent(seen.Sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen links: %w", err)
	}

	dir := filepath.Dir(fs.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fs.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", fs.filePath, err)
	}

	log.Printf("💾 Saved %d seen links to %s", seen.Len(), fs.filePath)
	return nil
}
