package bot

import (
	"QueueBot/internal/dispatch"
	"QueueBot/internal/matchmaker"
	"strings"
)

// 按钮 custom id：queue:<join|leave>:<mode>:<stake>
// 按钮本身只携带数据，所有点击走同一个处理函数。
const customIDPrefix = "queue"

const (
	actionJoin  = "join"
	actionLeave = "leave"
)

func EncodeCustomID(action string, key matchmaker.QueueKey) string {
	return customIDPrefix + ":" + action + ":" + string(key.Mode) + ":" + key.Stake.StringFixed(2)
}

// DecodeCustomID 解析按钮 id；模式名中允许出现 ':'，金额总在最后一段
func DecodeCustomID(id string) (kind dispatch.CommandKind, mode, stake string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return 0, "", "", false
	}
	switch parts[1] {
	case actionJoin:
		kind = dispatch.JoinQueue
	case actionLeave:
		kind = dispatch.LeaveQueue
	default:
		return 0, "", "", false
	}
	i := strings.LastIndex(parts[2], ":")
	if i <= 0 || i == len(parts[2])-1 {
		return 0, "", "", false
	}
	return kind, parts[2][:i], parts[2][i+1:], true
}
