// Package session 持有正在编辑的文档：每次修改后同步重新排版并发布最新的单页快照，
// 同时在空闲时自动保存。
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/metrics"
	"github.com/ByLCY/bytecv/pipeline"
	"github.com/ByLCY/bytecv/resume"
	"github.com/ByLCY/bytecv/store"
)

// Snapshot 是一次已发布的排版结果。Keys 为已上页块的键，恒为渲染序列的前缀。
type Snapshot struct {
	Version   uint64         `json:"version"`
	Result    *layout.Result `json:"result,omitempty"`
	Truncated bool           `json:"truncated"`
	Keys      []string       `json:"keys"`
	At        time.Time      `json:"at"`
}

// Options 配置 Controller。
type Options struct {
	Store         store.Store
	AutosaveDelay time.Duration
	Logger        *logrus.Entry
}

// Controller 串行化所有修改。订阅者在持锁期间被同步调用，不能在回调中再修改文档。
type Controller struct {
	mu   sync.Mutex
	pipe *pipeline.Pipeline
	log  *logrus.Entry
	doc  *resume.Document
	save *Autosaver

	snapMu  sync.RWMutex
	current Snapshot
	version uint64
	subs    map[int]func(Snapshot)
	nextSub int
}

// New 从存储加载文档并完成首次排版。记录缺失或损坏时从默认文档开始，不会失败。
func New(ctx context.Context, pipe *pipeline.Pipeline, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := opts.Store
	if s == nil {
		s = store.NewMemoryStore()
	}
	c := &Controller{
		pipe: pipe,
		log:  log,
		doc:  resume.New(),
		save: NewAutosaver(s, opts.AutosaveDelay, log),
		subs: map[int]func(Snapshot){},
	}

	rec, err := s.Load(ctx)
	switch {
	case err == nil:
		c.doc = rec.Document
		c.save.restore(rec.LastSaved)
	case errors.Is(err, store.ErrNotFound):
	default:
		log.WithError(err).Error("load saved resume failed, starting from default")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.recompute(); err != nil {
		log.WithError(err).Warn("initial layout failed")
	}
	return c
}

// Apply 执行一次编辑操作。非法操作不修改文档；排版失败时修改保留、上一次快照继续有效并返回错误。
func (c *Controller) Apply(op resume.Op) (string, Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.doc.Apply(op)
	if err != nil {
		return "", c.Current(), err
	}
	c.save.Schedule(c.doc.Clone())
	err = c.recompute()
	return id, c.Current(), err
}

// Update 以回调方式修改文档；回调返回错误时修改被丢弃。
func (c *Controller) Update(fn func(doc *resume.Document) error) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.doc.Clone()
	if err := fn(next); err != nil {
		return c.Current(), err
	}
	c.doc = next
	c.save.Schedule(c.doc.Clone())
	err := c.recompute()
	return c.Current(), err
}

// Replace 用导入的文档整体替换当前文档。
func (c *Controller) Replace(doc *resume.Document) (Snapshot, error) {
	if doc == nil {
		return c.Current(), fmt.Errorf("session: nil document")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc.Clone()
	c.save.Schedule(c.doc.Clone())
	err := c.recompute()
	return c.Current(), err
}

// Reset 恢复默认文档并删除已保存的记录。
func (c *Controller) Reset(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.save.Cancel()
	c.doc = resume.New()
	err := c.recompute()
	if derr := c.save.Discard(ctx); derr != nil {
		c.log.WithError(derr).Error("delete saved resume failed")
		err = errors.Join(err, derr)
	}
	return c.Current(), err
}

// Save 立即保存当前文档。
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save.Save(ctx, c.doc.Clone())
}

// Close 保存尚未落盘的修改。
func (c *Controller) Close(ctx context.Context) error {
	return c.save.Flush(ctx)
}

// LastSaved 返回最近一次成功保存的时间，未保存过时为零值。
func (c *Controller) LastSaved() time.Time { return c.save.LastSaved() }

// Dirty 报告是否存在尚未保存的修改。
func (c *Controller) Dirty() bool { return c.save.Pending() }

// Document 返回当前文档的副本。
func (c *Controller) Document() *resume.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// Current 返回最近发布的快照。
func (c *Controller) Current() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.current
}

// Subscribe 注册快照回调，返回取消函数。
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.snapMu.Lock()
		delete(c.subs, id)
		c.snapMu.Unlock()
	}
}

// recompute 对当前文档的快照执行一次排版并发布；调用方需持有 mu。
func (c *Controller) recompute() error {
	start := time.Now()
	res, err := c.pipe.Run(c.doc.Clone())
	dur := time.Since(start)
	metrics.RecomputeDuration.Observe(dur.Seconds())
	if err != nil {
		metrics.RecomputeFailures.Inc()
		c.log.WithError(err).Warn("layout pass abandoned, keeping previous preview")
		return err
	}

	c.snapMu.Lock()
	c.version++
	snap := Snapshot{
		Version:   c.version,
		Result:    res,
		Truncated: res.Fit.Truncated,
		Keys:      res.Fit.Keys(),
		At:        time.Now(),
	}
	c.current = snap
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.snapMu.Unlock()

	if snap.Truncated {
		metrics.Truncated.Set(1)
	} else {
		metrics.Truncated.Set(0)
	}
	metrics.IncludedBlocks.Set(float64(len(snap.Keys)))
	c.log.WithFields(logrus.Fields{
		"version":   snap.Version,
		"included":  len(snap.Keys),
		"used":      res.Fit.Used,
		"truncated": snap.Truncated,
		"dur":       dur,
	}).Debug("layout pass published")

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}
