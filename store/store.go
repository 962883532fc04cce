// Package store 持久化单份简历记录。所有实现都以固定键 StorageKey 保存可移植 JSON 记录。
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ByLCY/bytecv/resume"
)

// StorageKey 是保存简历记录的固定键。
const StorageKey = "bytecv-resume-data"

var (
	// ErrNotFound 表示尚未保存过记录。
	ErrNotFound = errors.New("store: record not found")
	// ErrCorrupt 表示记录存在但无法解析。
	ErrCorrupt = errors.New("store: record corrupt")
)

// Store 是持久化端口。
type Store interface {
	Load(ctx context.Context) (resume.Record, error)
	Save(ctx context.Context, doc *resume.Document, at time.Time) error
	Delete(ctx context.Context) error
}

// decode 把底层字节解析为记录，解析失败统一包装为 ErrCorrupt。
func decode(data []byte) (resume.Record, error) {
	rec, err := resume.Decode(data)
	if err != nil {
		return resume.Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec, nil
}
