package resume

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// unkeyedPrefix 标记解析时缺少 id 或 id 重复的记录，Repair 会为其分配新 id。
const unkeyedPrefix = "\x00unkeyed-"

// Entity 是可放入 Collection 的记录，Key 返回其唯一标识。
type Entity interface {
	Key() string
}

// Collection 是按插入顺序保存的 id → 记录映射。
// 空集合即零值：添加后再删除会回到与初始状态结构相等的值。
type Collection[T Entity] struct {
	ids  []string
	byID map[string]T
}

// Len 返回记录数量。
func (c *Collection[T]) Len() int { return len(c.ids) }

// Add 在末尾追加记录；若 id 已存在则原位替换。
func (c *Collection[T]) Add(rec T) {
	c.put(rec.Key(), rec)
}

func (c *Collection[T]) put(id string, rec T) {
	if c.byID == nil {
		c.byID = map[string]T{}
	}
	if _, ok := c.byID[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.byID[id] = rec
}

// Get 按 id 查找记录。
func (c *Collection[T]) Get(id string) (T, bool) {
	rec, ok := c.byID[id]
	return rec, ok
}

// Has 判断 id 是否存在。
func (c *Collection[T]) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Update 对已存在的记录执行 fn；id 不存在时什么也不做并返回 false。
func (c *Collection[T]) Update(id string, fn func(*T)) bool {
	rec, ok := c.byID[id]
	if !ok {
		return false
	}
	fn(&rec)
	c.byID[id] = rec
	return true
}

// Remove 按 id 删除记录，未知 id 为 no-op。
func (c *Collection[T]) Remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	kept := c.ids[:0]
	for _, k := range c.ids {
		if k != id {
			kept = append(kept, k)
		}
	}
	c.ids = kept
	if len(c.ids) == 0 {
		c.ids = nil
		c.byID = nil
	}
	return true
}

// IDs 返回按顺序排列的 id 副本。
func (c *Collection[T]) IDs() []string {
	if len(c.ids) == 0 {
		return nil
	}
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Values 按插入顺序返回记录副本。
func (c *Collection[T]) Values() []T {
	out := make([]T, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Equal 比较两个集合的顺序与内容，供 go-cmp 等结构比较使用。
func (c Collection[T]) Equal(o Collection[T]) bool {
	if len(c.ids) != len(o.ids) {
		return false
	}
	for i, id := range c.ids {
		if o.ids[i] != id {
			return false
		}
		if !reflect.DeepEqual(c.byID[id], o.byID[id]) {
			return false
		}
	}
	return true
}

// MarshalJSON 以数组形式输出，保持与可移植记录一致。
func (c Collection[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Values())
}

// UnmarshalJSON 从数组读取。缺少 id 或 id 重复的记录不会被合并，先以占位键保留。
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = Collection[T]{}
	for i, rec := range list {
		id := rec.Key()
		if id == "" || c.Has(id) {
			id = unkeyedPrefix + strconv.Itoa(i)
		}
		c.put(id, rec)
	}
	return nil
}

// rekey 为占位键的记录分配新 id 并写回记录，顺序不变。
func (c *Collection[T]) rekey(fresh func() string, set func(*T, string)) {
	for i, id := range c.ids {
		if !strings.HasPrefix(id, unkeyedPrefix) {
			continue
		}
		rec := c.byID[id]
		delete(c.byID, id)
		nid := fresh()
		for c.Has(nid) {
			nid = fresh()
		}
		set(&rec, nid)
		c.ids[i] = nid
		c.byID[nid] = rec
	}
}

func collectionOf[T Entity](recs ...T) Collection[T] {
	var c Collection[T]
	for _, r := range recs {
		c.Add(r)
	}
	return c
}

// cloneWith 深拷贝集合，fn 负责拷贝单条记录（nil 表示按值复制即可）。
func (c *Collection[T]) cloneWith(fn func(T) T) Collection[T] {
	var out Collection[T]
	for _, id := range c.ids {
		rec := c.byID[id]
		if fn != nil {
			rec = fn(rec)
		}
		out.Add(rec)
	}
	return out
}
