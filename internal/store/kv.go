// Package store holds the task collection and its persistence collaborator.
// Persistence is a plain key-value contract: opaque JSON blobs under fixed
// keys. The store itself hands out immutable snapshots and serializes all
// mutations through a single queue.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Fixed keys the task manager persists under.
const (
	KeyTasks    = "tasks"
	KeyProjects = "projects"
	KeyPrefs    = "prefs"
)

// KV is the key-value persistence collaborator. Implementations store and
// return opaque byte blobs; Get returns (nil, nil) for a missing key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// fileKV implements KV with one JSON file per key in a base directory.
type fileKV struct {
	basePath string
}

// NewFileKV creates a KV store writing each key as <basePath>/<key>.json.
func NewFileKV(basePath string) KV {
	return &fileKV{basePath: basePath}
}

func (kv *fileKV) path(key string) string {
	return filepath.Join(kv.basePath, key+".json")
}

func (kv *fileKV) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(kv.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (kv *fileKV) Set(key string, value []byte) error {
	if err := os.MkdirAll(kv.basePath, 0o750); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(kv.path(key), value, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
