package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"task-dashboard/internal/model"
	"task-dashboard/internal/store"
)

const (
	cbTogglePrefix         = "toggle:"
	cbDeleteTaskPrefix     = "deltask:"
	cbDeleteProjectPrefix  = "delproj:"
	cbDeleteCategoryPrefix = "delcat:"
	cbProjectTasksPrefix   = "ptasks:"
	cbConfirmPrefix        = "confirm:"
	cbCancel               = "cancel"
)

// Confirmation targets, encoded after cbConfirmPrefix.
const (
	targetTask     = "task:"
	targetProject  = "project:"
	targetCategory = "category:"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug("callback ack", zap.Error(err))
	}

	chatID := cb.Message.Chat.ID
	s := b.storeFor(ctx, chatID)
	data := cb.Data
	b.log.Debug("callback", zap.Int64("chat", chatID), zap.String("data", data))

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		return b.toggleTask(ctx, chatID, s, strings.TrimPrefix(data, cbTogglePrefix))
	case strings.HasPrefix(data, cbDeleteTaskPrefix):
		task, ok := taskByID(s.Tasks(), strings.TrimPrefix(data, cbDeleteTaskPrefix))
		if !ok {
			return b.sendText(chatID, "That task no longer exists.")
		}
		return b.askDeleteTask(chatID, s, task)
	case strings.HasPrefix(data, cbDeleteProjectPrefix):
		return b.askDeleteProject(chatID, s, strings.TrimPrefix(data, cbDeleteProjectPrefix))
	case strings.HasPrefix(data, cbDeleteCategoryPrefix):
		return b.askDeleteCategory(chatID, s, strings.TrimPrefix(data, cbDeleteCategoryPrefix))
	case strings.HasPrefix(data, cbProjectTasksPrefix):
		projectID := strings.TrimPrefix(data, cbProjectTasksPrefix)
		if _, ok := s.Project(projectID); !ok {
			return b.sendText(chatID, "That project no longer exists.")
		}
		return b.sendTaskList(chatID, s, projectID)
	case strings.HasPrefix(data, cbConfirmPrefix):
		s.SetActiveDropdown("")
		return b.confirmDelete(ctx, cb, s, strings.TrimPrefix(data, cbConfirmPrefix))
	case data == cbCancel:
		s.SetActiveDropdown("")
		return b.editText(chatID, cb.Message.MessageID, "↩️ Cancelled.")
	default:
		return nil
	}
}

func (b *Bot) askDeleteTask(chatID int64, s *store.Store, task model.Task) error {
	s.SetActiveDropdown(task.ID)
	text := fmt.Sprintf("Delete task «%s»?", escape(task.Name))
	return b.sendWithReplyMarkup(chatID, text, confirmInline(targetTask+task.ID))
}

func (b *Bot) askDeleteProject(chatID int64, s *store.Store, projectID string) error {
	project, ok := s.Project(projectID)
	if !ok {
		return b.sendText(chatID, "That project no longer exists.")
	}
	s.SetActiveDropdown(project.ID)
	text := fmt.Sprintf("Delete project «%s»?", escape(project.Name))
	if n := project.Progress.Total; n > 0 {
		text = fmt.Sprintf("Delete project «%s» and its %d task(s)?", escape(project.Name), n)
	}
	return b.sendWithReplyMarkup(chatID, text, confirmInline(targetProject+project.ID))
}

func (b *Bot) askDeleteCategory(chatID int64, s *store.Store, categoryID string) error {
	for _, c := range s.Categories() {
		if c.ID == categoryID {
			s.SetActiveDropdown(c.ID)
			text := fmt.Sprintf("Delete category «%s»? Projects keep their label.", escape(c.Name))
			return b.sendWithReplyMarkup(chatID, text, confirmInline(targetCategory+c.ID))
		}
	}
	return b.sendText(chatID, "That category no longer exists.")
}

func (b *Bot) confirmDelete(ctx context.Context, cb *tgbotapi.CallbackQuery, s *store.Store, target string) error {
	chatID := cb.Message.Chat.ID
	var (
		result string
		err    error
	)
	switch {
	case strings.HasPrefix(target, targetTask):
		err = s.DeleteTask(ctx, strings.TrimPrefix(target, targetTask))
		result = "🗑 Task deleted."
	case strings.HasPrefix(target, targetProject):
		var removed int
		removed, err = s.DeleteProject(ctx, strings.TrimPrefix(target, targetProject))
		result = fmt.Sprintf("🗑 Project deleted with %d task(s).", removed)
	case strings.HasPrefix(target, targetCategory):
		err = s.DeleteCategory(ctx, strings.TrimPrefix(target, targetCategory))
		result = "🗑 Category deleted."
	default:
		return nil
	}
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.editText(chatID, cb.Message.MessageID, result)
}

// editText replaces the text of a message the bot sent, dropping its
// buttons.
func (b *Bot) editText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	return err
}

func confirmInline(target string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnConfirm, cbConfirmPrefix+target),
			tgbotapi.NewInlineKeyboardButtonData(btnCancel, cbCancel),
		),
	)
}
