package store

import (
	"context"
	"sync"
	"time"

	"github.com/ByLCY/bytecv/resume"
)

// MemoryStore 是进程内存储，用于测试与 render 命令。
// 保存时仍经过编码，保证与其他实现行为一致。
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(ctx context.Context) (resume.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return resume.Record{}, ErrNotFound
	}
	return decode(m.data)
}

func (m *MemoryStore) Save(ctx context.Context, doc *resume.Document, at time.Time) error {
	b, err := resume.Encode(doc, at)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// SetRaw 直接写入原始字节（测试损坏记录时使用）。
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
}
