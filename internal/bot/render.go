package bot

import (
	"QueueBot/internal/dispatch"
	"QueueBot/internal/matchmaker"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

const (
	colorGreen = 0x2ECC71
	colorBlue  = 0x3498DB
	colorGold  = 0xF1C40F
)

const genericFailure = "⚠️ Ocorreu um erro ao executar o comando!"

// Reply 一条待发送的消息（文本或 embed）
type Reply struct {
	Content string
	Embed   *discordgo.MessageEmbed
}

func money(d decimal.Decimal) string {
	return "R$" + d.StringFixed(2)
}

func mention(id matchmaker.ParticipantID) string {
	return "<@" + string(id) + ">"
}

func modeTitle(m matchmaker.Mode) string {
	return strings.ToUpper(string(m))
}

// PromptMessage 队列面板：条款 + 两个常驻按钮
func PromptMessage(p dispatch.Prompt) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎮 Fila %s - %s", modeTitle(p.Key.Mode), money(p.Terms.Stake)),
		Description: fmt.Sprintf(
			"💰 **Valor:** %s\n📌 **Cada jogador paga:** %s\n🏆 **Vencedor recebe:** %s\n\n👉 Use os botões abaixo para entrar ou sair da fila.",
			money(p.Terms.Stake), money(p.Terms.PlayerCost), money(p.Terms.Payout)),
		Color: colorBlue,
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "🎮 Entrar",
					Style:    discordgo.SuccessButton,
					CustomID: EncodeCustomID(actionJoin, p.Key),
				},
				discordgo.Button{
					Label:    "❌ Sair",
					Style:    discordgo.DangerButton,
					CustomID: EncodeCustomID(actionLeave, p.Key),
				},
			}},
		},
	}
}

// MatchEmbed 成局公告，频道内所有人可见
func MatchEmbed(m *matchmaker.Match) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎮 PARTIDA FORMADA!",
		Description: fmt.Sprintf(
			"**Modo:** %s\n**Jogadores:** %s vs %s\n**Valor da aposta:** %s\n**Cada jogador paga:** %s\n**Vencedor recebe:** %s\n**ADM responsável:** %s",
			modeTitle(m.Mode), mention(m.Entrant1), mention(m.Entrant2),
			money(m.Terms.Stake), money(m.Terms.PlayerCost), money(m.Terms.Payout), mention(m.Moderator)),
		Color: colorGreen,
	}
}

func StatusEmbed(st *matchmaker.Status, modes []matchmaker.Mode) *discordgo.MessageEmbed {
	byMode := make(map[matchmaker.Mode][]string)
	for _, q := range st.Queues {
		if len(q.Members) == 0 {
			continue
		}
		users := make([]string, 0, len(q.Members))
		for _, id := range q.Members {
			users = append(users, mention(id))
		}
		byMode[q.Mode] = append(byMode[q.Mode],
			fmt.Sprintf("%s: %d/2 - %s", money(q.Key.Stake), len(q.Members), strings.Join(users, ", ")))
	}

	embed := &discordgo.MessageEmbed{Title: "📊 Status das Filas", Color: colorBlue}
	for _, m := range modes {
		value := "Todas as filas vazias"
		if lines := byMode[m]; len(lines) > 0 {
			value = strings.Join(lines, "\n")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🎮 " + modeTitle(m), Value: value,
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "👑 ADMs",
		Value: fmt.Sprintf("%d ADMs na fila", len(st.Moderators)),
	})
	return embed
}

func ModeratorsEmbed(ids []matchmaker.ParticipantID) *discordgo.MessageEmbed {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, mention(id))
	}
	return &discordgo.MessageEmbed{
		Title:       "👑 Fila de ADMs",
		Description: strings.Join(names, " → "),
		Color:       colorGold,
	}
}

// RenderCommand 文本命令的回复（发到命令所在频道）
func RenderCommand(res dispatch.Result, modes []matchmaker.Mode) Reply {
	who := mention(res.Command.Actor)
	switch res.Kind {
	case dispatch.PermissionDenied:
		return Reply{Content: "⚠️ Você não tem permissão para usar este comando!"}
	case dispatch.Unhandled:
		return Reply{Content: genericFailure}
	}

	switch res.Command.Kind {
	case dispatch.JoinModerator:
		if res.Kind == dispatch.AlreadyPresent {
			return Reply{Content: "⚠️ Você já está na fila de ADMs!"}
		}
		return Reply{Content: fmt.Sprintf("✅ %s entrou na fila de ADMs!", who)}
	case dispatch.LeaveModerator:
		if res.Kind == dispatch.NotPresent {
			return Reply{Content: "⚠️ Você não está na fila de ADMs!"}
		}
		return Reply{Content: fmt.Sprintf("❌ %s saiu da fila de ADMs!", who)}
	case dispatch.ListModerators:
		if res.Kind == dispatch.Empty {
			return Reply{Content: "⚠️ Nenhum ADM na fila!"}
		}
		return Reply{Embed: ModeratorsEmbed(res.Moderators)}
	case dispatch.Status:
		return Reply{Embed: StatusEmbed(res.Status, modes)}
	case dispatch.Clear:
		if res.Kind == dispatch.InvalidKey {
			return Reply{Content: "⚠️ Tipo ou valor inválido!"}
		}
		return Reply{Content: clearedText(res.Command)}
	}
	return Reply{Content: genericFailure}
}

func clearedText(cmd dispatch.Command) string {
	switch {
	case cmd.Mode == "":
		return "✅ Todas as filas limpas!"
	case cmd.Stake == "":
		return fmt.Sprintf("✅ Todas as filas de %s limpas!", strings.ToLower(cmd.Mode))
	}
	return fmt.Sprintf("✅ Fila %s R$%s limpa!", strings.ToLower(cmd.Mode), cmd.Stake)
}

// RenderButton 按钮点击的确认，只对点击者可见
func RenderButton(res dispatch.Result) string {
	who := mention(res.Command.Actor)
	where := ""
	if res.Key != nil {
		where = fmt.Sprintf("**%s** %s", modeTitle(res.Key.Mode), money(res.Key.Stake))
	}
	switch res.Kind {
	case dispatch.Joined, dispatch.MatchFormed:
		return fmt.Sprintf("✅ %s entrou na fila %s", who, where)
	case dispatch.NoModeratorAvailable:
		return fmt.Sprintf("✅ %s entrou na fila %s\n⚠️ Nenhum ADM disponível!", who, where)
	case dispatch.AlreadyPresent:
		return "⚠️ Você já está nessa fila!"
	case dispatch.Left:
		return fmt.Sprintf("❌ %s saiu da fila %s", who, where)
	case dispatch.NotPresent:
		return "⚠️ Você não está nessa fila!"
	case dispatch.QueueBusy:
		return "⚠️ Essa fila já tem uma partida aguardando ADM. Tente novamente em instantes."
	case dispatch.InvalidKey:
		return "⚠️ Fila inválida!"
	}
	return genericFailure
}
