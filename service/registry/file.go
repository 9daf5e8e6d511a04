package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore 每个网络一个 JSON 文件: <dir>/<network>.json
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(network string) string {
	return filepath.Join(s.dir, network+".json")
}

func (s *FileStore) Save(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(r.Network)
	if err != nil {
		return err
	}
	records = append(records, r)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed on encode deployments")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed on create %s", s.dir)
	}

	// 先写临时文件再 rename，避免中途失败留下半个文件
	tmp, err := os.CreateTemp(s.dir, "."+r.Network+"-*.json")
	if err != nil {
		return errors.Wrap(err, "failed on create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed on write deployments")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed on close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path(r.Network)); err != nil {
		return errors.Wrap(err, "failed on replace deployments file")
	}
	return nil
}

func (s *FileStore) List(_ context.Context, network string) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(network)
}

func (s *FileStore) read(network string) ([]*Record, error) {
	data, err := os.ReadFile(s.path(network))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed on read deployments of %s", network)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "failed on decode deployments of %s", network)
	}
	return records, nil
}

// Close 文件存储没有需要释放的资源
func (s *FileStore) Close() error {
	return nil
}
