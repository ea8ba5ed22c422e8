// Package dispatch 是聊天适配层与匹配核心之间的唯一契约：
// 适配层把用户动作翻译成 Command，核心的结果以 Result 返回，渲染由适配层负责。
package dispatch

import (
	"QueueBot/internal/matchmaker"
	"QueueBot/internal/utils"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type CommandKind int

const (
	CreateQueues CommandKind = iota + 1
	JoinQueue
	LeaveQueue
	JoinModerator
	LeaveModerator
	ListModerators
	Status
	Clear
)

var commandNames = map[CommandKind]string{
	CreateQueues:   "create-queues",
	JoinQueue:      "join-queue",
	LeaveQueue:     "leave-queue",
	JoinModerator:  "join-moderator",
	LeaveModerator: "leave-moderator",
	ListModerators: "list-moderators",
	Status:         "status",
	Clear:          "clear",
}

func (k CommandKind) String() string {
	if s, ok := commandNames[k]; ok {
		return s
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// AdminOnly 需要管理员权限的命令
func (k CommandKind) AdminOnly() bool {
	return k == CreateQueues || k == Clear
}

// Command 一次用户动作。按钮与文本命令都翻译成它，不需要为每个按钮写闭包。
type Command struct {
	Kind      CommandKind
	Actor     matchmaker.ParticipantID
	Admin     bool
	ChannelID string
	Mode      string
	Stake     string
}

type ResultKind int

const (
	Joined ResultKind = iota + 1
	Left
	AlreadyPresent
	NotPresent
	InvalidKey
	MatchFormed
	NoModeratorAvailable
	Empty
	Snapshot
	Moderators
	Cleared
	Prompts
	QueueBusy
	PermissionDenied
	Unhandled
)

var resultNames = map[ResultKind]string{
	Joined:               "joined",
	Left:                 "left",
	AlreadyPresent:       "already-present",
	NotPresent:           "not-present",
	InvalidKey:           "invalid-key",
	MatchFormed:          "match-formed",
	NoModeratorAvailable: "no-moderator-available",
	Empty:                "empty",
	Snapshot:             "snapshot",
	Moderators:           "moderators",
	Cleared:              "cleared",
	Prompts:              "prompts",
	QueueBusy:            "queue-busy",
	PermissionDenied:     "permission-denied",
	Unhandled:            "unhandled",
}

func (k ResultKind) String() string {
	if s, ok := resultNames[k]; ok {
		return s
	}
	return fmt.Sprintf("result(%d)", int(k))
}

// Prompt 一个待发布的队列面板
type Prompt struct {
	Key       matchmaker.QueueKey
	ChannelID string
	Terms     matchmaker.MatchTerms
}

type Result struct {
	Kind    ResultKind
	Command Command
	Key     *matchmaker.QueueKey
	// Matches 本次动作促成的对局（入队成局、ADM 加入后自动成局）
	Matches    []*matchmaker.Match
	Status     *matchmaker.Status
	Moderators []matchmaker.ParticipantID
	Prompts    []Prompt
	Scope      string
	Err        error
}

// Core 适配层需要的核心操作，*matchmaker.Service 实现它
type Core interface {
	Catalog() *matchmaker.Catalog
	Terms(stake decimal.Decimal) matchmaker.MatchTerms
	Join(ctx context.Context, key matchmaker.QueueKey, id matchmaker.ParticipantID) (*matchmaker.JoinResult, error)
	Leave(ctx context.Context, key matchmaker.QueueKey, id matchmaker.ParticipantID) error
	JoinModerator(ctx context.Context, id matchmaker.ParticipantID) ([]*matchmaker.Match, error)
	LeaveModerator(ctx context.Context, id matchmaker.ParticipantID) error
	Moderators() []matchmaker.ParticipantID
	Clear(ctx context.Context, scope matchmaker.ClearScope) (string, error)
	Status() matchmaker.Status
}

type Dispatcher struct {
	core Core
}

func NewDispatcher(core Core) *Dispatcher {
	return &Dispatcher{core: core}
}

// Dispatch 执行命令。panic 与意外错误转为 Unhandled，细节只记日志。
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			utils.Log.Error("command panic", "command", cmd.Kind, "actor", cmd.Actor, "panic", r)
			res = Result{Kind: Unhandled, Command: cmd, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if cmd.Kind.AdminOnly() && !cmd.Admin {
		return Result{Kind: PermissionDenied, Command: cmd}
	}

	res = d.dispatch(ctx, cmd)
	res.Command = cmd
	if res.Kind == Unhandled {
		utils.Log.Error("command failed", "command", cmd.Kind, "actor", cmd.Actor, "err", res.Err)
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd Command) Result {
	switch cmd.Kind {
	case CreateQueues:
		return d.createQueues()
	case JoinQueue:
		return d.joinQueue(ctx, cmd)
	case LeaveQueue:
		return d.leaveQueue(ctx, cmd)
	case JoinModerator:
		matches, err := d.core.JoinModerator(ctx, cmd.Actor)
		if err != nil {
			return fromError(err)
		}
		return Result{Kind: Joined, Matches: matches}
	case LeaveModerator:
		if err := d.core.LeaveModerator(ctx, cmd.Actor); err != nil {
			return fromError(err)
		}
		return Result{Kind: Left}
	case ListModerators:
		mods := d.core.Moderators()
		if len(mods) == 0 {
			return Result{Kind: Empty}
		}
		return Result{Kind: Moderators, Moderators: mods}
	case Status:
		st := d.core.Status()
		return Result{Kind: Snapshot, Status: &st}
	case Clear:
		if cmd.Mode == "" && cmd.Stake != "" {
			return Result{Kind: InvalidKey, Err: matchmaker.ErrInvalidKey}
		}
		scope, err := d.core.Clear(ctx, matchmaker.ClearScope{Mode: cmd.Mode, Stake: cmd.Stake})
		if err != nil {
			return fromError(err)
		}
		return Result{Kind: Cleared, Scope: scope}
	}
	return Result{Kind: Unhandled, Err: fmt.Errorf("unknown command %v", cmd.Kind)}
}

func (d *Dispatcher) createQueues() Result {
	cat := d.core.Catalog()
	var prompts []Prompt
	for _, key := range cat.Keys() {
		ch, _ := cat.Channel(key.Mode)
		prompts = append(prompts, Prompt{Key: key, ChannelID: ch, Terms: d.core.Terms(key.Stake)})
	}
	return Result{Kind: Prompts, Prompts: prompts}
}

func (d *Dispatcher) joinQueue(ctx context.Context, cmd Command) Result {
	key, err := d.core.Catalog().Key(cmd.Mode, cmd.Stake)
	if err != nil {
		return fromError(err)
	}
	jr, err := d.core.Join(ctx, key, cmd.Actor)
	if err != nil {
		r := fromError(err)
		r.Key = &key
		return r
	}
	switch {
	case jr.Match != nil:
		return Result{Kind: MatchFormed, Key: &key, Matches: []*matchmaker.Match{jr.Match}}
	case jr.NoModerator:
		return Result{Kind: NoModeratorAvailable, Key: &key}
	}
	return Result{Kind: Joined, Key: &key}
}

func (d *Dispatcher) leaveQueue(ctx context.Context, cmd Command) Result {
	key, err := d.core.Catalog().Key(cmd.Mode, cmd.Stake)
	if err != nil {
		return fromError(err)
	}
	if err := d.core.Leave(ctx, key, cmd.Actor); err != nil {
		r := fromError(err)
		r.Key = &key
		return r
	}
	return Result{Kind: Left, Key: &key}
}

// fromError 预期内的错误映射到对应结果，其他一律 Unhandled
func fromError(err error) Result {
	switch {
	case errors.Is(err, matchmaker.ErrInvalidKey):
		return Result{Kind: InvalidKey, Err: err}
	case errors.Is(err, matchmaker.ErrAlreadyQueued), errors.Is(err, matchmaker.ErrAlreadyPresent):
		return Result{Kind: AlreadyPresent, Err: err}
	case errors.Is(err, matchmaker.ErrNotQueued), errors.Is(err, matchmaker.ErrNotPresent):
		return Result{Kind: NotPresent, Err: err}
	case errors.Is(err, matchmaker.ErrEmpty):
		return Result{Kind: Empty, Err: err}
	case errors.Is(err, matchmaker.ErrPairPending):
		return Result{Kind: QueueBusy, Err: err}
	}
	return Result{Kind: Unhandled, Err: err}
}
