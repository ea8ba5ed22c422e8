package bot

import (
	"QueueBot/internal/dispatch"
	"QueueBot/internal/matchmaker"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	channel string
	content string
	data    *discordgo.MessageSend
}

// fakeAPI 记录所有 REST 调用
type fakeAPI struct {
	mu        sync.Mutex
	messages  []sent
	responses []*discordgo.InteractionResponse
	admins    map[string]bool
	badChan   map[string]bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{admins: map[string]bool{}, badChan: map[string]bool{}}
}

func (f *fakeAPI) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{channel: channelID, content: content})
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.badChan[channelID] {
		return nil, errors.New("unknown channel")
	}
	f.messages = append(f.messages, sent{channel: channelID, data: data})
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	if f.admins[userID] {
		return discordgo.PermissionAdministrator, nil
	}
	return discordgo.PermissionSendMessages, nil
}

func (f *fakeAPI) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

func (f *fakeAPI) lastResponse() *discordgo.InteractionResponseData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.responses[len(f.responses)-1].Data
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	cat, err := matchmaker.NewCatalog(
		map[string]string{"1v1": "chan-1v1", "2v2": "chan-2v2"},
		[]decimal.Decimal{decimal.NewFromInt(10)},
	)
	require.NoError(t, err)
	svc := matchmaker.NewService(matchmaker.NewRegistry(cat), matchmaker.NewRotation(), decimal.NewFromInt(2), nil)
	api := newFakeAPI()
	return New(context.Background(), api, dispatch.NewDispatcher(svc), cat, "!"), api
}

func message(author, content string) *discordgo.Message {
	return &discordgo.Message{
		Author:    &discordgo.User{ID: author},
		Content:   content,
		ChannelID: "cmd-chan",
		GuildID:   "guild",
	}
}

func press(user, customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "chan-1v1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: user}},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func TestBotIgnoresBotsAndUnknownCommands(t *testing.T) {
	b, api := newTestBot(t)

	b.HandleMessage(&discordgo.Message{Author: &discordgo.User{ID: "x", Bot: true}, Content: "!status"})
	b.HandleMessage(message("u", "!naoexiste"))
	b.HandleMessage(message("u", "hello"))
	assert.Empty(t, api.messages)
}

func TestBotCreateQueues(t *testing.T) {
	b, api := newTestBot(t)

	b.HandleMessage(message("user", "!criarfilas"))
	assert.Contains(t, api.last().content, "não tem permissão")

	api.admins["boss"] = true
	api.badChan["chan-2v2"] = true
	b.HandleMessage(message("boss", "!criarfilas"))

	var prompts []sent
	var texts []string
	for _, m := range api.messages {
		if m.data != nil {
			prompts = append(prompts, m)
		} else {
			texts = append(texts, m.content)
		}
	}
	require.Len(t, prompts, 1)
	assert.Equal(t, "chan-1v1", prompts[0].channel)
	row := prompts[0].data.Components[0].(discordgo.ActionsRow)
	assert.Equal(t, "queue:join:1v1:10.00", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "queue:leave:1v1:10.00", row.Components[1].(discordgo.Button).CustomID)
	assert.Contains(t, prompts[0].data.Embeds[0].Description, "R$12.00")

	assert.Contains(t, strings.Join(texts, "\n"), "Canal para 2v2 não encontrado")
	assert.Equal(t, "✅ 1 filas foram criadas!", texts[len(texts)-1])
}

func TestBotButtonsFormMatch(t *testing.T) {
	b, api := newTestBot(t)
	join := "queue:join:1v1:10.00"

	b.HandleInteraction(press("p1", join))
	resp := api.lastResponse()
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Flags)
	assert.Contains(t, resp.Content, "entrou na fila **1V1** R$10.00")

	b.HandleInteraction(press("p1", join))
	assert.Equal(t, "⚠️ Você já está nessa fila!", api.lastResponse().Content)

	b.HandleInteraction(press("p2", join))
	assert.Contains(t, api.lastResponse().Content, "Nenhum ADM disponível")

	b.HandleMessage(message("mod", "!entraradm"))
	found := false
	for _, m := range api.messages {
		if m.data != nil && len(m.data.Embeds) == 1 && m.data.Embeds[0].Title == "🎮 PARTIDA FORMADA!" {
			found = true
			assert.Equal(t, "chan-1v1", m.channel)
			d := m.data.Embeds[0].Description
			assert.Contains(t, d, "<@p1> vs <@p2>")
			assert.Contains(t, d, "**Cada jogador paga:** R$12.00")
			assert.Contains(t, d, "**Vencedor recebe:** R$20.00")
			assert.Contains(t, d, "**ADM responsável:** <@mod>")
		}
	}
	assert.True(t, found, "match announced after moderator joined")

	b.HandleInteraction(press("p3", join))
	b.HandleInteraction(press("p4", join))
	last := api.last()
	require.NotNil(t, last.data)
	assert.Equal(t, "chan-1v1", last.channel)
	assert.Contains(t, last.data.Embeds[0].Description, "<@p3> vs <@p4>")

	b.HandleInteraction(press("p9", "queue:leave:1v1:10.00"))
	assert.Equal(t, "⚠️ Você não está nessa fila!", api.lastResponse().Content)
}

func TestBotModeratorCommands(t *testing.T) {
	b, api := newTestBot(t)

	b.HandleMessage(message("m1", "!filaadm"))
	assert.Equal(t, "⚠️ Nenhum ADM na fila!", api.last().content)

	b.HandleMessage(message("m1", "!entraradm"))
	assert.Equal(t, "✅ <@m1> entrou na fila de ADMs!", api.last().content)
	b.HandleMessage(message("m1", "!entraradm"))
	assert.Equal(t, "⚠️ Você já está na fila de ADMs!", api.last().content)
	b.HandleMessage(message("m2", "!join-moderator"))

	b.HandleMessage(message("m1", "!filaadm"))
	assert.Equal(t, "<@m1> → <@m2>", api.last().data.Embeds[0].Description)

	b.HandleMessage(message("m1", "!sairadm"))
	assert.Equal(t, "❌ <@m1> saiu da fila de ADMs!", api.last().content)
	b.HandleMessage(message("m1", "!sairadm"))
	assert.Equal(t, "⚠️ Você não está na fila de ADMs!", api.last().content)
}

func TestBotStatusAndClear(t *testing.T) {
	b, api := newTestBot(t)
	api.admins["boss"] = true

	b.HandleInteraction(press("p1", "queue:join:1v1:10.00"))
	b.HandleMessage(message("u", "!status"))
	embed := api.last().data.Embeds[0]
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "R$10.00: 1/2 - <@p1>", embed.Fields[0].Value)
	assert.Equal(t, "Todas as filas vazias", embed.Fields[1].Value)
	assert.Equal(t, "0 ADMs na fila", embed.Fields[2].Value)

	b.HandleMessage(message("u", "!limpar"))
	assert.Contains(t, api.last().content, "não tem permissão")

	b.HandleMessage(message("boss", "!limpar 1v1 10"))
	assert.Equal(t, "✅ Fila 1v1 R$10 limpa!", api.last().content)
	b.HandleMessage(message("boss", "!limpar 2v2"))
	assert.Equal(t, "✅ Todas as filas de 2v2 limpas!", api.last().content)
	b.HandleMessage(message("boss", "!limpar"))
	assert.Equal(t, "✅ Todas as filas limpas!", api.last().content)
	b.HandleMessage(message("boss", "!limpar 7v7"))
	assert.Equal(t, "⚠️ Tipo ou valor inválido!", api.last().content)
}

func TestBotDirectMessageIsNeverAdmin(t *testing.T) {
	b, api := newTestBot(t)
	api.admins["boss"] = true

	m := message("boss", "!limpar")
	m.GuildID = ""
	b.HandleMessage(m)
	assert.Contains(t, api.last().content, "não tem permissão")
}
