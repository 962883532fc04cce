package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/bytecv/metrics"
	"github.com/ByLCY/bytecv/resume"
	"github.com/ByLCY/bytecv/store"
)

const saveTimeout = 10 * time.Second

// Autosaver 在最后一次修改后静默 delay 时间再保存文档；新的修改会重置计时。
// delay <= 0 时不自动保存，仅响应 Save/Flush。
type Autosaver struct {
	store store.Store
	delay time.Duration
	log   *logrus.Entry
	now   func() time.Time

	// persistMu 串行化所有对存储的写入与删除
	persistMu sync.Mutex

	mu        sync.Mutex
	timer     *time.Timer
	pending   *resume.Document
	gen       uint64 // Save/Cancel 时递增，旧代的写入被丢弃
	lastSaved time.Time
}

func NewAutosaver(s store.Store, delay time.Duration, log *logrus.Entry) *Autosaver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Autosaver{store: s, delay: delay, log: log, now: time.Now}
}

// Schedule 记录待保存的文档快照并重置计时器。
func (a *Autosaver) Schedule(doc *resume.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = doc
	if a.delay <= 0 {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := a.Flush(ctx); err != nil {
			a.log.WithError(err).Error("autosave failed")
		}
	})
}

// Flush 立即保存待保存的快照；没有待保存内容时什么也不做。
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	doc, gen := a.pending, a.gen
	a.pending = nil
	a.mu.Unlock()
	if doc == nil {
		return nil
	}
	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	return a.persist(ctx, doc, gen)
}

// Save 立即保存 doc，doc 必须是最新状态：尚未触发的自动保存随之取消。
func (a *Autosaver) Save(ctx context.Context, doc *resume.Document) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.gen++
	gen := a.gen
	a.mu.Unlock()
	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	return a.persist(ctx, doc, gen)
}

// persist 写入 doc；调用方需持有 persistMu。gen 已过期时跳过写入。
func (a *Autosaver) persist(ctx context.Context, doc *resume.Document, gen uint64) error {
	a.mu.Lock()
	stale := gen != a.gen
	a.mu.Unlock()
	if stale {
		a.log.Debug("skip superseded save")
		return nil
	}
	at := a.now()
	err := a.store.Save(ctx, doc, at)
	metrics.Saves.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		// 失败时重新排队，除非期间已有更新的修改或已被取消
		a.mu.Lock()
		if a.pending == nil && gen == a.gen {
			a.pending = doc
		}
		a.mu.Unlock()
		return err
	}
	a.mu.Lock()
	if at.After(a.lastSaved) {
		a.lastSaved = at
	}
	a.mu.Unlock()
	a.log.WithField("at", at.Format(time.RFC3339)).Debug("saved")
	return nil
}

// Cancel 丢弃待保存内容并停止计时器；已开始但尚未写入的保存也会被跳过。
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.gen++
}

// Discard 取消所有保存并删除已保存的记录。进行中的写入先完成，随后被删除覆盖。
func (a *Autosaver) Discard(ctx context.Context) error {
	a.Cancel()
	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	return a.store.Delete(ctx)
}

// Pending 报告是否有尚未保存的修改。
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// LastSaved 返回最近一次成功保存的时间。
func (a *Autosaver) LastSaved() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved
}

// restore 用已加载记录的保存时间初始化 LastSaved。
func (a *Autosaver) restore(at time.Time) {
	a.mu.Lock()
	a.lastSaved = at
	a.mu.Unlock()
}
