package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"task-dashboard/internal/model"
	"task-dashboard/internal/service"
	"task-dashboard/internal/store"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageProjectName
	stageProjectCategory
	stageProjectIcon
	stageTaskName
	stageTaskPriority
	stageTaskProject
	stageCategoryName
)

type conversationState struct {
	stage   conversationStage
	project store.ProjectInput
	task    store.TaskInput
	// projects maps the project keyboard labels to ids.
	projects map[string]string
}

func (b *Bot) startNewProject(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	s.OpenModal(store.ModalNewProject)
	b.setConversation(chatID, &conversationState{stage: stageProjectName})
	return b.sendWithReplyMarkup(chatID, "🆕 New project.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) startNewTask(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	s.OpenModal(store.ModalNewTask)
	b.setConversation(chatID, &conversationState{stage: stageTaskName})
	return b.sendWithReplyMarkup(chatID, "🆕 New task.\n<b>Step 1:</b> what needs doing?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	state := b.getConversation(chatID)
	if state == nil {
		return nil
	}
	s := b.storeFor(ctx, chatID)
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageProjectName:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "A project needs a name.", cancelKeyboard())
		}
		state.project.Name = text
		state.stage = stageProjectCategory
		return b.sendWithReplyMarkup(chatID, "🏷 <b>Step 2:</b> pick a category or type one (or skip).", categoryKeyboard(s.Categories()))
	case stageProjectCategory:
		if !isSkipInput(text) {
			state.project.Category = text
		}
		state.stage = stageProjectIcon
		s.OpenModal(store.ModalIconPicker)
		return b.sendWithReplyMarkup(chatID, "🎨 <b>Step 3:</b> choose an icon.", iconKeyboard())
	case stageProjectIcon:
		if !isSkipInput(text) {
			state.project.Icon = text
		}
		b.clearConversation(chatID)
		return b.finishProject(ctx, chatID, s, state.project)
	case stageTaskName:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "A task needs a name.", cancelKeyboard())
		}
		state.task.Name = text
		state.stage = stageTaskPriority
		return b.sendWithReplyMarkup(chatID, "⚡️ <b>Step 2:</b> priority?", priorityKeyboard())
	case stageTaskPriority:
		priority, ok := priorityInput(text)
		if !ok {
			return b.sendWithReplyMarkup(chatID, "Pick Low, Medium or High.", priorityKeyboard())
		}
		state.task.Priority = string(priority)
		state.stage = stageTaskProject
		projects := s.Projects()
		state.projects = make(map[string]string, len(projects))
		for _, p := range projects {
			state.projects[strings.ToLower(p.Name)] = p.ID
		}
		return b.sendWithReplyMarkup(chatID, "📁 <b>Step 3:</b> which project? Choose General for none.", projectKeyboard(projects))
	case stageTaskProject:
		if !isGeneralInput(text) && !isSkipInput(text) {
			id, ok := state.projects[strings.ToLower(text)]
			if !ok {
				return b.sendText(chatID, "No project with that name. Pick one from the keyboard or General.")
			}
			state.task.ProjectID = id
		}
		b.clearConversation(chatID)
		return b.finishTask(ctx, chatID, s, state.task)
	case stageCategoryName:
		b.clearConversation(chatID)
		return b.finishCategory(ctx, chatID, s, text)
	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "Input reset. Start again with /newproject or /newtask.")
	}
}

func (b *Bot) finishProject(ctx context.Context, chatID int64, s *store.Store, input store.ProjectInput) error {
	project, err := s.AddProject(ctx, input)
	if err != nil {
		s.CloseModal()
		return b.sendError(chatID, err)
	}
	s.OpenModal(store.ModalProjectCreated)
	defer s.CloseModal()

	b.log.Info("project created", zap.Int64("chat", chatID), zap.String("project", project.ID))
	return b.sendText(chatID, "✅ <b>Project created</b>\n"+service.FormatProject(*project)+"Add tasks with /newtask.")
}

func (b *Bot) finishTask(ctx context.Context, chatID int64, s *store.Store, input store.TaskInput) error {
	task, err := s.AddTask(ctx, input)
	s.CloseModal()
	if err != nil {
		return b.sendError(chatID, err)
	}

	label := store.GeneralTasksLabel
	if !task.General() {
		if p, ok := s.Project(*task.ProjectID); ok {
			label = fmt.Sprintf("%s · %d%%", p.Name, p.Progress.Percent())
		}
	}
	return b.sendText(chatID, "✅ <b>Task saved</b>\n"+service.FormatTask(*task, label))
}

// endConversation drops any half-finished input and closes its dialog.
func (b *Bot) endConversation(ctx context.Context, chatID int64) {
	if !b.hasConversation(chatID) {
		return
	}
	b.clearConversation(chatID)
	b.storeFor(ctx, chatID).CloseModal()
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[chatID]
	return ok
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}

func priorityInput(text string) (model.Priority, bool) {
	value := strings.ToLower(strings.TrimSpace(text))
	for _, p := range []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh} {
		if value == string(p) || value == strings.ToLower(priorityLabel(p)) {
			return p, true
		}
	}
	return "", false
}
