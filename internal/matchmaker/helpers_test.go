package matchmaker

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordPublisher 记录所有发布的事件
type recordPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordPublisher) Publish(ctx context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordPublisher) ofType(t EventType) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(
		map[string]string{"1v1": "chan-1v1", "2V2": "chan-2v2"},
		[]decimal.Decimal{decimal.NewFromInt(5), decimal.NewFromInt(10)},
	)
	require.NoError(t, err)
	return c
}

func testKey(t *testing.T, c *Catalog, mode, stake string) QueueKey {
	t.Helper()
	k, err := c.Key(mode, stake)
	require.NoError(t, err)
	return k
}

func newTestService(t *testing.T, moderators ...ParticipantID) (*Service, *recordPublisher) {
	t.Helper()
	rot := NewRotation()
	for _, m := range moderators {
		require.NoError(t, rot.Join(m))
	}
	pub := &recordPublisher{}
	svc := NewService(NewRegistry(testCatalog(t)), rot, decimal.NewFromInt(2), pub)
	return svc, pub
}
