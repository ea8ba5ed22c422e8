package bot

import (
	"QueueBot/internal/dispatch"
	"strings"
)

// 文本命令名（葡语原名 + 英文别名）
var commandAliases = map[string]dispatch.CommandKind{
	"criarfilas":      dispatch.CreateQueues,
	"create-queues":   dispatch.CreateQueues,
	"entraradm":       dispatch.JoinModerator,
	"join-moderator":  dispatch.JoinModerator,
	"sairadm":         dispatch.LeaveModerator,
	"leave-moderator": dispatch.LeaveModerator,
	"filaadm":         dispatch.ListModerators,
	"list-moderators": dispatch.ListModerators,
	"status":          dispatch.Status,
	"limpar":          dispatch.Clear,
	"clear":           dispatch.Clear,
}

// ParseCommand 解析 "!limpar 1v1 10" 这类消息；非命令或未知命令返回 false（静默忽略）
func ParseCommand(prefix, content string) (dispatch.Command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return dispatch.Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return dispatch.Command{}, false
	}
	kind, ok := commandAliases[strings.ToLower(fields[0])]
	if !ok {
		return dispatch.Command{}, false
	}
	cmd := dispatch.Command{Kind: kind}
	if kind == dispatch.Clear {
		if len(fields) > 1 {
			cmd.Mode = fields[1]
		}
		if len(fields) > 2 {
			cmd.Stake = fields[2]
		}
	}
	return cmd, true
}
