package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
)

// FileExt is the extension of every key file.
const FileExt = ".toml"

// FileStore implements Store with one TOML file per key inside a directory.
type FileStore struct {
	dir    string
	logger hclog.Logger
}

// NewFileStore creates a store rooted at dir. The directory is created on
// the first write.
func NewFileStore(dir string, logger hclog.Logger) *FileStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileStore{dir: dir, logger: logger.Named("store")}
}

// Dir returns the directory holding the key files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path for key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+FileExt)
}

// Get reads and decodes the file for key.
func (s *FileStore) Get(ctx context.Context, key string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if err := validateKey(key); err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}

	if err := toml.Unmarshal(data, v); err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}

	s.logger.Trace("read key", "key", key, "bytes", len(data))
	return true, nil
}

// Set encodes v and atomically replaces the file for key.
func (s *FileStore) Set(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	if err := validateKey(key); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}

	// Hidden temp name so the watcher ignores it.
	f, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	tmp := f.Name()

	if err := toml.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	if err := os.Rename(tmp, s.Path(key)); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}

	s.logger.Trace("wrote key", "key", key)
	return nil
}
