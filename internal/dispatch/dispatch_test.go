package dispatch

import (
	"QueueBot/internal/matchmaker"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *matchmaker.Service) {
	t.Helper()
	cat, err := matchmaker.NewCatalog(
		map[string]string{"1v1": "c1", "2v2": "c2"},
		[]decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(20)},
	)
	require.NoError(t, err)
	svc := matchmaker.NewService(matchmaker.NewRegistry(cat), matchmaker.NewRotation(), decimal.NewFromInt(2), nil)
	return NewDispatcher(svc), svc
}

func join(mode, stake, actor string) Command {
	return Command{Kind: JoinQueue, Mode: mode, Stake: stake, Actor: matchmaker.ParticipantID(actor)}
}

func TestDispatchAdminGate(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	for _, k := range []CommandKind{CreateQueues, Clear} {
		res := d.Dispatch(ctx, Command{Kind: k, Actor: "u"})
		assert.Equal(t, PermissionDenied, res.Kind, k.String())
	}
	res := d.Dispatch(ctx, Command{Kind: Status, Actor: "u"})
	assert.Equal(t, Snapshot, res.Kind)
}

func TestDispatchCreateQueues(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), Command{Kind: CreateQueues, Admin: true})
	require.Equal(t, Prompts, res.Kind)
	require.Len(t, res.Prompts, 4)
	p := res.Prompts[0]
	assert.Equal(t, "1v1:10.00", p.Key.ID())
	assert.Equal(t, "c1", p.ChannelID)
	assert.Equal(t, "12.00", p.Terms.PlayerCost.StringFixed(2))
	assert.Equal(t, "c2", res.Prompts[3].ChannelID)
}

func TestDispatchQueueFlow(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, InvalidKey, d.Dispatch(ctx, join("3v3", "10", "a")).Kind)
	assert.Equal(t, InvalidKey, d.Dispatch(ctx, join("1v1", "15", "a")).Kind)

	res := d.Dispatch(ctx, join("1v1", "10", "a"))
	assert.Equal(t, Joined, res.Kind)
	require.NotNil(t, res.Key)
	assert.Equal(t, "1v1:10.00", res.Key.ID())
	assert.Equal(t, AlreadyPresent, d.Dispatch(ctx, join("1v1", "10", "a")).Kind)

	// 没有 ADM：凑齐两人但回滚
	res = d.Dispatch(ctx, join("1v1", "10", "b"))
	assert.Equal(t, NoModeratorAvailable, res.Kind)
	assert.Equal(t, QueueBusy, d.Dispatch(ctx, join("1v1", "10", "c")).Kind)

	// ADM 加入后自动成局
	res = d.Dispatch(ctx, Command{Kind: JoinModerator, Actor: "mod"})
	assert.Equal(t, Joined, res.Kind)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, matchmaker.ParticipantID("a"), res.Matches[0].Entrant1)
	assert.Equal(t, matchmaker.ParticipantID("mod"), res.Matches[0].Moderator)

	d.Dispatch(ctx, join("2v2", "20", "x"))
	res = d.Dispatch(ctx, join("2v2", "20", "y"))
	assert.Equal(t, MatchFormed, res.Kind)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "40.00", res.Matches[0].Terms.Payout.StringFixed(2))

	leave := Command{Kind: LeaveQueue, Mode: "2v2", Stake: "20", Actor: "x"}
	assert.Equal(t, NotPresent, d.Dispatch(ctx, leave).Kind)
	d.Dispatch(ctx, join("2v2", "20", "x"))
	assert.Equal(t, Left, d.Dispatch(ctx, leave).Kind)
}

func TestDispatchModerators(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, Empty, d.Dispatch(ctx, Command{Kind: ListModerators}).Kind)
	assert.Equal(t, NotPresent, d.Dispatch(ctx, Command{Kind: LeaveModerator, Actor: "m"}).Kind)
	assert.Equal(t, Joined, d.Dispatch(ctx, Command{Kind: JoinModerator, Actor: "m"}).Kind)
	assert.Equal(t, AlreadyPresent, d.Dispatch(ctx, Command{Kind: JoinModerator, Actor: "m"}).Kind)

	res := d.Dispatch(ctx, Command{Kind: ListModerators})
	assert.Equal(t, Moderators, res.Kind)
	assert.Equal(t, []matchmaker.ParticipantID{"m"}, res.Moderators)

	assert.Equal(t, Left, d.Dispatch(ctx, Command{Kind: LeaveModerator, Actor: "m"}).Kind)
}

func TestDispatchClear(t *testing.T) {
	d, svc := newTestDispatcher(t)
	ctx := context.Background()
	d.Dispatch(ctx, join("1v1", "10", "a"))
	d.Dispatch(ctx, join("1v1", "10", "b"))

	res := d.Dispatch(ctx, Command{Kind: Clear, Admin: true, Mode: "1v1", Stake: "10"})
	assert.Equal(t, Cleared, res.Kind)
	assert.Equal(t, "1v1:10.00", res.Scope)
	for _, q := range svc.Status().Queues {
		assert.Empty(t, q.Members)
	}

	assert.Equal(t, InvalidKey, d.Dispatch(ctx, Command{Kind: Clear, Admin: true, Mode: "zz"}).Kind)
	assert.Equal(t, Cleared, d.Dispatch(ctx, Command{Kind: Clear, Admin: true}).Kind)
	assert.Equal(t, Cleared, d.Dispatch(ctx, Command{Kind: Clear, Admin: true}).Kind)
}

type panicCore struct{ Core }

func (panicCore) Status() matchmaker.Status { panic("kaboom") }

func TestDispatchRecoversPanic(t *testing.T) {
	d := NewDispatcher(panicCore{})

	res := d.Dispatch(context.Background(), Command{Kind: Status, Actor: "u"})
	assert.Equal(t, Unhandled, res.Kind)
	assert.Error(t, res.Err)
	assert.Equal(t, matchmaker.ParticipantID("u"), res.Command.Actor)
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), Command{Kind: CommandKind(99)})
	assert.Equal(t, Unhandled, res.Kind)
	assert.Equal(t, "command(99)", res.Command.Kind.String())
}
