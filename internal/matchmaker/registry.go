package matchmaker

import (
	"fmt"
	"sync"
)

// PairFunc 在队列凑满两人时于该队列锁内同步调用。
// 返回 error 时两人按原顺序放回队列。
type PairFunc func(key QueueKey, first, second ParticipantID) error

type queue struct {
	mu      sync.Mutex
	key     QueueKey
	members []ParticipantID
}

func (q *queue) indexOf(id ParticipantID) int {
	for i, v := range q.members {
		if v == id {
			return i
		}
	}
	return -1
}

// pairLocked 调用方须持有 q.mu
func (q *queue) pairLocked(pair PairFunc) error {
	if len(q.members) != 2 {
		return fmt.Errorf("queue %s has %d members: %w", q.key, len(q.members), ErrInvariant)
	}
	first, second := q.members[0], q.members[1]
	q.members = nil
	if err := pair(q.key, first, second); err != nil {
		q.members = []ParticipantID{first, second}
		return err
	}
	return nil
}

func (q *queue) snapshotLocked() QueueSnapshot {
	return QueueSnapshot{
		Key:     q.key,
		Queue:   q.key.ID(),
		Mode:    q.key.Mode,
		Stake:   q.key.Stake.StringFixed(2),
		Members: append([]ParticipantID{}, q.members...),
	}
}

// Registry 每个 (mode, stake) 一个 FIFO 队列，每个队列一把锁。
// 键集合在构造时固定，因此 map 本身只读。
type Registry struct {
	catalog *Catalog
	order   []*queue
	queues  map[string]*queue
}

func NewRegistry(catalog *Catalog) *Registry {
	r := &Registry{catalog: catalog, queues: make(map[string]*queue)}
	for _, k := range catalog.Keys() {
		q := &queue{key: k}
		r.order = append(r.order, q)
		r.queues[k.ID()] = q
	}
	return r
}

func (r *Registry) Catalog() *Catalog { return r.catalog }

func (r *Registry) lookup(key QueueKey) (*queue, error) {
	q, ok := r.queues[key.ID()]
	if !ok {
		return nil, fmt.Errorf("queue %s: %w", key, ErrInvalidKey)
	}
	return q, nil
}

// Join 追加到队尾并返回入队后的长度。
// 长度到 2 时在锁内调用 pair：成功则队列清空（返回 0），失败则回滚（返回 2）并返回 pair 的错误。
func (r *Registry) Join(key QueueKey, id ParticipantID, pair PairFunc) (int, error) {
	q, err := r.lookup(key)
	if err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(id) >= 0 {
		return len(q.members), fmt.Errorf("%s in %s: %w", id, key, ErrAlreadyQueued)
	}
	switch n := len(q.members); {
	case n == 2:
		return n, fmt.Errorf("queue %s: %w", key, ErrPairPending)
	case n > 2:
		return n, fmt.Errorf("queue %s has %d members: %w", key, n, ErrInvariant)
	}

	q.members = append(q.members, id)
	if len(q.members) < 2 {
		return len(q.members), nil
	}
	if err := q.pairLocked(pair); err != nil {
		return len(q.members), err
	}
	return 0, nil
}

// Retry 对等待 ADM 的两人队列重新尝试成局；不足两人时返回 false
func (r *Registry) Retry(key QueueKey, pair PairFunc) (bool, error) {
	q, err := r.lookup(key)
	if err != nil {
		return false, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.members) < 2 {
		return false, nil
	}
	if err := q.pairLocked(pair); err != nil {
		return false, err
	}
	return true, nil
}

// Pending 返回当前凑满两人、等待 ADM 的队列键（按目录顺序）
func (r *Registry) Pending() []QueueKey {
	var keys []QueueKey
	for _, q := range r.order {
		q.mu.Lock()
		if len(q.members) == 2 {
			keys = append(keys, q.key)
		}
		q.mu.Unlock()
	}
	return keys
}

// Leave 移除成员，其余成员保持相对顺序
func (r *Registry) Leave(key QueueKey, id ParticipantID) error {
	q, err := r.lookup(key)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s in %s: %w", id, key, ErrNotQueued)
	}
	q.members = append(q.members[:i:i], q.members[i+1:]...)
	return nil
}

func (r *Registry) Contains(key QueueKey, id ParticipantID) (bool, error) {
	q, err := r.lookup(key)
	if err != nil {
		return false, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(id) >= 0, nil
}

func (r *Registry) Len(key QueueKey) (int, error) {
	q, err := r.lookup(key)
	if err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.members), nil
}

func (r *Registry) Clear(key QueueKey) error {
	q, err := r.lookup(key)
	if err != nil {
		return err
	}
	q.mu.Lock()
	q.members = nil
	q.mu.Unlock()
	return nil
}

func (r *Registry) ClearMode(mode Mode) error {
	if _, ok := r.catalog.Channel(mode); !ok {
		return fmt.Errorf("mode %q: %w", mode, ErrInvalidKey)
	}
	for _, q := range r.order {
		if q.key.Mode != mode {
			continue
		}
		q.mu.Lock()
		q.members = nil
		q.mu.Unlock()
	}
	return nil
}

func (r *Registry) ClearAll() {
	for _, q := range r.order {
		q.mu.Lock()
		q.members = nil
		q.mu.Unlock()
	}
}

func (r *Registry) Snapshot(key QueueKey) (QueueSnapshot, error) {
	q, err := r.lookup(key)
	if err != nil {
		return QueueSnapshot{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked(), nil
}

// SnapshotAll 逐个队列加锁读取，不保证跨队列一致
func (r *Registry) SnapshotAll() []QueueSnapshot {
	out := make([]QueueSnapshot, 0, len(r.order))
	for _, q := range r.order {
		q.mu.Lock()
		out = append(out, q.snapshotLocked())
		q.mu.Unlock()
	}
	return out
}
