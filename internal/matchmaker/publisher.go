package matchmaker

import (
	"context"
	"errors"
)

// Publisher 事件出口（WebSocket 看板、Redis 频道）。
// Service 在释放所有锁之后才调用 Publish。
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type multiPublisher []Publisher

// NewMultiPublisher 依次投递给每个 Publisher，忽略 nil
func NewMultiPublisher(ps ...Publisher) Publisher {
	out := make(multiPublisher, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multiPublisher) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
