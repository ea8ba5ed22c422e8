package bot

import (
	"QueueBot/internal/dispatch"
	"QueueBot/internal/matchmaker"
	"QueueBot/internal/utils"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// API 适配层用到的 Discord REST 调用，*discordgo.Session 实现它
type API interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

type Bot struct {
	ctx        context.Context
	api        API
	session    *discordgo.Session
	dispatcher *dispatch.Dispatcher
	catalog    *matchmaker.Catalog
	prefix     string
}

func New(ctx context.Context, api API, dispatcher *dispatch.Dispatcher, catalog *matchmaker.Catalog, prefix string) *Bot {
	return &Bot{ctx: ctx, api: api, dispatcher: dispatcher, catalog: catalog, prefix: prefix}
}

// Open 用 token 建立 Discord 会话并注册处理函数
func Open(ctx context.Context, token string, dispatcher *dispatch.Dispatcher, catalog *matchmaker.Catalog, prefix string) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	b := New(ctx, s, dispatcher, catalog, prefix)
	b.session = s
	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onInteractionCreate)

	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("discord login: %w", err)
	}
	return b, nil
}

func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	utils.Log.Info("bot connected", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.HandleMessage(m.Message)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.HandleInteraction(i.Interaction)
}

// HandleMessage 处理文本命令
func (b *Bot) HandleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	cmd, ok := ParseCommand(b.prefix, m.Content)
	if !ok {
		return
	}
	cmd.Actor = matchmaker.ParticipantID(m.Author.ID)
	cmd.ChannelID = m.ChannelID
	if cmd.Kind.AdminOnly() {
		cmd.Admin = b.isAdmin(m.GuildID, m.Author.ID, m.ChannelID)
	}

	res := b.dispatcher.Dispatch(b.ctx, cmd)
	utils.Log.Debug("command handled", "command", cmd.Kind, "actor", cmd.Actor, "result", res.Kind)

	if cmd.Kind == dispatch.CreateQueues && res.Kind == dispatch.Prompts {
		b.postPrompts(m.ChannelID, res.Prompts)
		return
	}
	b.reply(m.ChannelID, RenderCommand(res, b.catalog.Modes()))

	// ADM 加入后自动成局的对局，发到对应模式的频道
	for _, match := range res.Matches {
		ch, ok := b.catalog.Channel(match.Mode)
		if !ok {
			ch = m.ChannelID
		}
		b.announce(ch, match)
	}
}

// HandleInteraction 处理队列面板按钮
func (b *Bot) HandleInteraction(i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	kind, mode, stake, ok := DecodeCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	user := interactionUser(i)
	if user == nil {
		return
	}

	res := b.dispatcher.Dispatch(b.ctx, dispatch.Command{
		Kind:      kind,
		Actor:     matchmaker.ParticipantID(user.ID),
		ChannelID: i.ChannelID,
		Mode:      mode,
		Stake:     stake,
	})

	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: RenderButton(res),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		utils.Log.Error("interaction respond", "user", user.ID, "err", err)
	}

	for _, match := range res.Matches {
		b.announce(i.ChannelID, match)
	}
}

func (b *Bot) postPrompts(replyChannel string, prompts []dispatch.Prompt) {
	created := 0
	failed := make(map[matchmaker.Mode]bool)
	for _, p := range prompts {
		if failed[p.Key.Mode] {
			continue
		}
		if _, err := b.api.ChannelMessageSendComplex(p.ChannelID, PromptMessage(p)); err != nil {
			utils.Log.Error("post queue prompt", "queue", p.Key, "channel", p.ChannelID, "err", err)
			failed[p.Key.Mode] = true
			b.reply(replyChannel, Reply{Content: fmt.Sprintf(
				"⚠️ Canal para %s não encontrado ou não é um canal de texto (ID: %s)", p.Key.Mode, p.ChannelID)})
			continue
		}
		created++
	}
	b.reply(replyChannel, Reply{Content: fmt.Sprintf("✅ %d filas foram criadas!", created)})
}

func (b *Bot) announce(channelID string, m *matchmaker.Match) {
	if _, err := b.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{MatchEmbed(m)},
	}); err != nil {
		utils.Log.Error("announce match", "match", m.ID, "channel", channelID, "err", err)
	}
}

func (b *Bot) reply(channelID string, r Reply) {
	var err error
	if r.Embed != nil {
		_, err = b.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content: r.Content,
			Embeds:  []*discordgo.MessageEmbed{r.Embed},
		})
	} else {
		_, err = b.api.ChannelMessageSend(channelID, r.Content)
	}
	if err != nil {
		utils.Log.Error("send reply", "channel", channelID, "err", err)
	}
}

// isAdmin 私聊中没有管理员
func (b *Bot) isAdmin(guildID, userID, channelID string) bool {
	if guildID == "" {
		return false
	}
	perms, err := b.api.UserChannelPermissions(userID, channelID)
	if err != nil {
		utils.Log.Warn("permission lookup", "user", userID, "channel", channelID, "err", err)
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
