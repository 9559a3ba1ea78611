package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"task-dashboard/internal/service"
	"task-dashboard/internal/store"
)

// StoreFactory builds the application store for one chat. namespace keeps
// the chat's locally persisted state apart from other chats.
type StoreFactory func(namespace string) *store.Store

// sender is the part of the Telegram API the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves the dashboard over Telegram, one store per private chat.
type Bot struct {
	api     sender
	client  *tgbotapi.BotAPI
	factory StoreFactory
	reports *service.ReportService
	log     *zap.Logger

	mu            sync.Mutex
	stores        map[int64]*store.Store
	conversations map[int64]*conversationState
}

func New(token string, factory StoreFactory, reports *service.ReportService, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, factory, reports, log)
	b.client = api
	b.log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return b, nil
}

func newBot(api sender, factory StoreFactory, reports *service.ReportService, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	if reports == nil {
		reports = service.NewReportService(time.Local)
	}
	return &Bot{
		api:           api,
		factory:       factory,
		reports:       reports,
		log:           log,
		stores:        make(map[int64]*store.Store),
		conversations: make(map[int64]*conversationState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no telegram client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return nil
}

// Close releases every chat store.
func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.stores {
		s.Close()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Warn("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Warn("handle message", zap.Error(err))
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.endConversation(ctx, chatID)
		return b.sendText(chatID, "⏪ Input cancelled.")
	}

	if msg.IsCommand() {
		b.log.Debug("command", zap.Int64("chat", chatID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(chatID) {
		return b.handleConversation(ctx, msg)
	}

	if command, ok := menuAlias(msg.Text); ok {
		return b.dispatch(ctx, chatID, command, "")
	}

	return b.sendText(chatID, "I did not get that. Try /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Command() != "cancel" {
		b.endConversation(ctx, msg.Chat.ID)
	}
	return b.dispatch(ctx, msg.Chat.ID, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
}

func (b *Bot) dispatch(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start":
		return b.handleStart(ctx, chatID)
	case "help":
		return b.handleHelp(chatID)
	case "login":
		return b.handleLogin(ctx, chatID, args)
	case "signup":
		return b.handleSignup(ctx, chatID, args)
	case "demo":
		return b.handleDemo(ctx, chatID)
	case "logout":
		return b.handleLogout(ctx, chatID)
	case "reset":
		return b.handleReset(ctx, chatID, args)
	case "newpassword":
		return b.handleNewPassword(ctx, chatID, args)
	case "dashboard", "report":
		return b.handleDashboard(ctx, chatID)
	case "projects":
		return b.handleProjects(ctx, chatID)
	case "newproject":
		return b.startNewProject(ctx, chatID)
	case "deleteproject":
		return b.handleDeleteProject(ctx, chatID, args)
	case "categories":
		return b.handleCategories(ctx, chatID)
	case "newcategory":
		return b.handleNewCategory(ctx, chatID, args)
	case "deletecategory":
		return b.handleDeleteCategory(ctx, chatID, args)
	case "tasks":
		return b.handleTasks(ctx, chatID, args)
	case "newtask":
		return b.startNewTask(ctx, chatID)
	case "toggle":
		return b.handleToggle(ctx, chatID, args)
	case "deletetask":
		return b.handleDeleteTask(ctx, chatID, args)
	case "progress":
		return b.handleProgress(ctx, chatID)
	case "theme":
		return b.handleTheme(ctx, chatID)
	case "cancel":
		b.endConversation(ctx, chatID)
		return b.sendText(chatID, "⏪ Input cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

// SendReports sends the dashboard summary to every chat with an active
// session.
func (b *Bot) SendReports(ctx context.Context) error {
	b.mu.Lock()
	chats := make(map[int64]*store.Store, len(b.stores))
	for id, s := range b.stores {
		chats[id] = s
	}
	b.mu.Unlock()

	now := time.Now()
	sent := 0
	for chatID, s := range chats {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d, ok := s.Dashboard()
		if !ok {
			continue
		}
		if err := b.sendText(chatID, b.reports.DashboardSummary(d, now)); err != nil {
			b.log.Warn("send report", zap.Int64("chat", chatID), zap.Error(err))
			continue
		}
		sent++
	}
	b.log.Info("reports sent", zap.Int("chats", sent))
	return nil
}

// storeFor returns the chat's store, creating it and resuming any persisted
// session on first use.
func (b *Bot) storeFor(ctx context.Context, chatID int64) *store.Store {
	b.mu.Lock()
	s, ok := b.stores[chatID]
	if !ok {
		s = b.factory(fmt.Sprintf("chat-%d", chatID))
		b.stores[chatID] = s
	}
	b.mu.Unlock()

	if !ok {
		if _, err := s.Restore(ctx); err != nil && !errors.Is(err, store.ErrAuthRequired) {
			b.log.Info("session not restored", zap.Int64("chat", chatID), zap.Error(err))
		}
	}
	return s
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// sendError reports a failed store operation in words a person can act on.
func (b *Bot) sendError(chatID int64, err error) error {
	return b.sendText(chatID, "⚠️ "+escape(store.Message(err)))
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
