package matchmaker

import (
	"QueueBot/internal/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service 配对引擎 + 对外操作入口。
// 锁顺序固定为 queue -> rotation；所有 Publish 都在锁外执行。
type Service struct {
	registry  *Registry
	rotation  *Rotation
	fee       decimal.Decimal
	publisher Publisher
	now       func() time.Time

	OnMatch func(*Match) // 成局时调用（同步，锁外）
}

func NewService(registry *Registry, rotation *Rotation, fee decimal.Decimal, publisher Publisher) *Service {
	if publisher == nil {
		publisher = NewMultiPublisher()
	}
	return &Service{
		registry:  registry,
		rotation:  rotation,
		fee:       fee,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) Catalog() *Catalog { return s.registry.Catalog() }

func (s *Service) Fee() decimal.Decimal { return s.fee }

// Terms 计算某个押注的条款（用于发布队列面板）
func (s *Service) Terms(stake decimal.Decimal) MatchTerms {
	return NewMatchTerms(stake, s.fee)
}

// pairer 返回的 PairFunc 在队列锁内分配 ADM 并构造对局；out 只在成功时被写入
func (s *Service) pairer(out **Match) PairFunc {
	return func(key QueueKey, first, second ParticipantID) error {
		if first == second {
			return fmt.Errorf("queue %s paired %s with itself: %w", key, first, ErrInvariant)
		}
		mod, err := s.rotation.Assign()
		if err != nil {
			return err
		}
		*out = &Match{
			ID:        uuid.NewString(),
			Mode:      key.Mode,
			Stake:     key.Stake.StringFixed(2),
			Entrant1:  first,
			Entrant2:  second,
			Moderator: mod,
			Terms:     NewMatchTerms(key.Stake, s.fee),
			CreatedAt: s.now(),
		}
		return nil
	}
}

// Join 入队；凑满两人时立即成局。无 ADM 时队列回滚为两人并发出 no_moderator 事件。
func (s *Service) Join(ctx context.Context, key QueueKey, id ParticipantID) (*JoinResult, error) {
	var match *Match
	n, err := s.registry.Join(key, id, s.pairer(&match))
	res := &JoinResult{Key: key, Length: n}
	switch {
	case errors.Is(err, ErrEmpty):
		res.NoModerator = true
		utils.Log.Warn("pair held, no moderator", "queue", key, "length", n)
		s.publish(ctx, Event{Type: EventNoModerator, Queue: key.ID(), At: s.now()})
		return res, nil
	case err != nil:
		return res, err
	}
	if match != nil {
		res.Match = match
		s.announce(ctx, match)
	}
	return res, nil
}

func (s *Service) Leave(ctx context.Context, key QueueKey, id ParticipantID) error {
	return s.registry.Leave(key, id)
}

// JoinModerator 加入轮换，并立刻为所有等待 ADM 的两人队列自动成局
func (s *Service) JoinModerator(ctx context.Context, id ParticipantID) ([]*Match, error) {
	if err := s.rotation.Join(id); err != nil {
		return nil, err
	}
	utils.Log.Info("moderator joined", "moderator", id, "rotation", s.rotation.Len())
	return s.RetryPending(ctx), nil
}

// RetryPending 逐个重试等待中的两人队列
func (s *Service) RetryPending(ctx context.Context) []*Match {
	var matches []*Match
	for _, key := range s.registry.Pending() {
		var match *Match
		ok, err := s.registry.Retry(key, s.pairer(&match))
		if errors.Is(err, ErrEmpty) {
			break
		}
		if err != nil {
			utils.Log.Error("retry pending pair", "queue", key, "err", err)
			continue
		}
		if ok && match != nil {
			matches = append(matches, match)
		}
	}
	for _, m := range matches {
		s.announce(ctx, m)
	}
	return matches
}

func (s *Service) LeaveModerator(ctx context.Context, id ParticipantID) error {
	if err := s.rotation.Leave(id); err != nil {
		return err
	}
	utils.Log.Info("moderator left", "moderator", id, "rotation", s.rotation.Len())
	return nil
}

func (s *Service) Moderators() []ParticipantID {
	return s.rotation.List()
}

// Clear 按范围清空，不会触发成局。返回实际清空的范围描述。
func (s *Service) Clear(ctx context.Context, scope ClearScope) (string, error) {
	var desc string
	switch {
	case scope.Mode == "" && scope.Stake == "":
		s.registry.ClearAll()
		desc = "all"
	case scope.Stake == "":
		m, err := s.Catalog().LookupMode(scope.Mode)
		if err != nil {
			return "", err
		}
		if err := s.registry.ClearMode(m); err != nil {
			return "", err
		}
		desc = string(m)
	default:
		key, err := s.Catalog().Key(scope.Mode, scope.Stake)
		if err != nil {
			return "", err
		}
		if err := s.registry.Clear(key); err != nil {
			return "", err
		}
		desc = key.ID()
	}
	utils.Log.Info("queues cleared", "scope", desc)
	s.publish(ctx, Event{Type: EventQueuesCleared, Scope: desc, At: s.now()})
	return desc, nil
}

func (s *Service) Snapshot(key QueueKey) (QueueSnapshot, error) {
	return s.registry.Snapshot(key)
}

func (s *Service) Status() Status {
	return Status{
		Queues:     s.registry.SnapshotAll(),
		Moderators: s.rotation.List(),
	}
}

func (s *Service) announce(ctx context.Context, m *Match) {
	utils.Log.Info("match formed",
		"id", m.ID, "queue", m.Key(), "p1", m.Entrant1, "p2", m.Entrant2, "moderator", m.Moderator)
	s.publish(ctx, Event{Type: EventMatchFormed, Queue: m.Key().ID(), Match: m, At: m.CreatedAt})
	if s.OnMatch != nil {
		s.OnMatch(m)
	}
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		utils.Log.Error("publish event", "type", ev.Type, "err", err)
	}
}
