package matchmaker

import (
	"fmt"
	"sync"
)

// Rotation ADM 轮换队列：按加入顺序排列，ID 唯一
type Rotation struct {
	mu  sync.Mutex
	ids []ParticipantID
}

func NewRotation() *Rotation {
	return &Rotation{}
}

func (r *Rotation) Join(id ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(id) >= 0 {
		return fmt.Errorf("moderator %s: %w", id, ErrAlreadyPresent)
	}
	r.ids = append(r.ids, id)
	return nil
}

func (r *Rotation) Leave(id ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("moderator %s: %w", id, ErrNotPresent)
	}
	r.ids = append(r.ids[:i], r.ids[i+1:]...)
	return nil
}

// TakeNext 取出队首
func (r *Rotation) TakeNext() (ParticipantID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.takeNext()
}

// Recycle 放回队尾
func (r *Rotation) Recycle(id ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recycle(id)
}

// Assign = TakeNext + Recycle，在同一把锁内完成，中间不会插入其他修改
func (r *Rotation) Assign() (ParticipantID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.takeNext()
	if err != nil {
		return "", err
	}
	r.recycle(id)
	return id, nil
}

// List 返回快照副本
func (r *Rotation) List() []ParticipantID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ParticipantID{}, r.ids...)
}

func (r *Rotation) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func (r *Rotation) takeNext() (ParticipantID, error) {
	if len(r.ids) == 0 {
		return "", ErrEmpty
	}
	id := r.ids[0]
	r.ids = r.ids[1:]
	return id, nil
}

func (r *Rotation) recycle(id ParticipantID) {
	if r.indexOf(id) >= 0 {
		return
	}
	r.ids = append(r.ids, id)
}

func (r *Rotation) indexOf(id ParticipantID) int {
	for i, v := range r.ids {
		if v == id {
			return i
		}
	}
	return -1
}
