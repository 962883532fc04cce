package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ByLCY/bytecv/resume"
)

// FileStore 把记录保存为 <dir>/bytecv-resume-data.json。
type FileStore struct {
	dir string
}

// NewFileStore 创建基于目录的存储，目录在首次保存时创建。
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path 返回记录文件路径。
func (s *FileStore) Path() string { return filepath.Join(s.dir, StorageKey+".json") }

func (s *FileStore) Load(ctx context.Context) (resume.Record, error) {
	if err := ctx.Err(); err != nil {
		return resume.Record{}, err
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return resume.Record{}, ErrNotFound
	}
	if err != nil {
		return resume.Record{}, fmt.Errorf("读取 %s 失败: %w", s.Path(), err)
	}
	return decode(data)
}

// Save 先写临时文件再重命名，避免中途失败留下半截记录。
func (s *FileStore) Save(ctx context.Context, doc *resume.Document, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := resume.Encode(doc, at)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("创建目录 %s 失败: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, StorageKey+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

func (s *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
