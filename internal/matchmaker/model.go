package matchmaker

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParticipantID 平台用户 ID（Discord snowflake 等），按值传递
type ParticipantID string

// Mode 游戏模式，例如 "1v1"、"x1-mobile"
type Mode string

// QueueKey 队列键：模式 + 押注金额
type QueueKey struct {
	Mode  Mode
	Stake decimal.Decimal
}

// ID 返回稳定的字符串形式，例如 "1v1:10.00"
func (k QueueKey) ID() string {
	return string(k.Mode) + ":" + k.Stake.StringFixed(2)
}

func (k QueueKey) String() string { return k.ID() }

// MatchTerms 对局金额条款，成局时计算，不保存
type MatchTerms struct {
	Stake      decimal.Decimal `json:"stake"`
	Fee        decimal.Decimal `json:"fee"`
	PlayerCost decimal.Decimal `json:"playerCost"` // stake + fee
	Payout     decimal.Decimal `json:"payout"`     // stake * 2
}

func NewMatchTerms(stake, fee decimal.Decimal) MatchTerms {
	return MatchTerms{
		Stake:      stake,
		Fee:        fee,
		PlayerCost: stake.Add(fee),
		Payout:     stake.Mul(decimal.NewFromInt(2)),
	}
}

// Match 成局结果（MatchFormed 事件的载荷）
type Match struct {
	ID        string        `json:"id"`
	Mode      Mode          `json:"mode"`
	Stake     string        `json:"stake"`
	Entrant1  ParticipantID `json:"entrant1"`
	Entrant2  ParticipantID `json:"entrant2"`
	Moderator ParticipantID `json:"moderator"`
	Terms     MatchTerms    `json:"terms"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Key 还原对局所属的队列键
func (m *Match) Key() QueueKey {
	return QueueKey{Mode: m.Mode, Stake: m.Terms.Stake}
}

// EventType 核心对外发出的事件类型
type EventType string

const (
	EventMatchFormed   EventType = "match_formed"
	EventNoModerator   EventType = "no_moderator"
	EventQueuesCleared EventType = "queues_cleared"
)

// Event 由 Publisher 分发
type Event struct {
	Type  EventType `json:"type"`
	Queue string    `json:"queue,omitempty"`
	Match *Match    `json:"match,omitempty"`
	Scope string    `json:"scope,omitempty"`
	At    time.Time `json:"at"`
}

// QueueSnapshot 单个队列的只读视图
type QueueSnapshot struct {
	Key     QueueKey        `json:"-"`
	Queue   string          `json:"queue"`
	Mode    Mode            `json:"mode"`
	Stake   string          `json:"stake"`
	Members []ParticipantID `json:"members"`
}

// Status 全部队列 + 管理员轮换
type Status struct {
	Queues     []QueueSnapshot `json:"queues"`
	Moderators []ParticipantID `json:"moderators"`
}

// JoinResult 入队结果。Match 非空表示已成局；NoModerator 表示凑齐两人但无 ADM，队列已回滚
type JoinResult struct {
	Key         QueueKey
	Length      int
	Match       *Match
	NoModerator bool
}

// ClearScope 清空范围：Mode 为空表示全部；Stake 为空表示整个模式
type ClearScope struct {
	Mode  string
	Stake string
}
