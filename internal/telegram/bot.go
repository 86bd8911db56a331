// Package telegram is a thin transport over the agent: one update loop,
// an allow-list check, and two commands for memory inspection.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"agentic-chat/internal/agent"
	"agentic-chat/internal/memory"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	agent   *agent.Agent
	memory  *memory.Store
	allowed map[int64]bool
}

// New creates the bot. An empty allowedIDs list means everyone is
// allowed.
func New(botToken string, a *agent.Agent, store *memory.Store, allowedIDs []int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	allowed := make(map[int64]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}

	return &Bot{
		api:     api,
		agent:   a,
		memory:  store,
		allowed: allowed,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	log.Printf("🤖 Telegram bot started as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range b.api.GetUpdatesChan(u) {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if len(b.allowed) > 0 && !b.allowed[msg.From.ID] {
		log.Printf("⚠️ unauthorized access attempt by user %d (@%s)", msg.From.ID, msg.From.UserName)
		b.send(msg.Chat.ID, "Sorry, you are not allowed to use this bot.")
		return
	}

	log.Printf("💬 message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID, "Hi! I can help with weather, web search, videos, locations and travel planning. Just ask.")
		return
	case "memory":
		b.send(msg.Chat.ID, formatStats(b.memory.Stats()))
		return
	case "clear":
		b.memory.Clear()
		b.send(msg.Chat.ID, "Memory cleared successfully")
		return
	}

	reply := b.agent.ProcessMessage(ctx, msg.Text)

	text := reply.Response
	if len(reply.ToolCalls) > 0 {
		var names []string
		for _, call := range reply.ToolCalls {
			names = append(names, call.Tool)
		}
		text += "\n\n🔧 Tools used: " + strings.Join(names, ", ")
	}
	b.send(msg.Chat.ID, text)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("❌ failed to send message: %v", err)
	}
}

func formatStats(st memory.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧠 Memory summary\n\n")
	fmt.Fprintf(&sb, "Conversations: %d\n", st.TotalConversations)
	fmt.Fprintf(&sb, "File size: %.1f KB\n", st.FileSizeKB)
	if st.OldestConversation != "" {
		fmt.Fprintf(&sb, "Oldest: %s\n", st.OldestConversation)
		fmt.Fprintf(&sb, "Newest: %s\n", st.NewestConversation)
	}
	if len(st.RecentTopics) > 0 {
		fmt.Fprintf(&sb, "\nRecent topics:\n")
		for _, topic := range st.RecentTopics {
			fmt.Fprintf(&sb, "- %s\n", topic)
		}
	}
	return sb.String()
}
