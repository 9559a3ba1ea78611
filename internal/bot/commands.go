package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"task-dashboard/internal/model"
	"task-dashboard/internal/service"
	"task-dashboard/internal/store"
)

const (
	maxButtons = 20
	msgSignIn  = "Please sign in first: /login, /signup or /demo."
)

func (b *Bot) handleStart(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if session, ok := s.Session(); ok {
		return b.sendText(chatID, fmt.Sprintf("👋 Welcome back, %s!\nOpen /dashboard to see where things stand.", escape(session.DisplayName)))
	}
	text := "👋 <b>Task dashboard</b>\nProjects, categories and tasks with progress tracking.\n\n" +
		"• /login &lt;email&gt; &lt;password&gt; — sign in\n" +
		"• /signup &lt;name&gt; &lt;email&gt; &lt;password&gt; — create an account\n" +
		"• /demo — try it without an account, data stays on this chat\n" +
		"• /help — every command"
	return b.sendText(chatID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"<b>Account</b>\n" +
		"• /login &lt;email&gt; &lt;password&gt;\n" +
		"• /signup &lt;name&gt; &lt;email&gt; &lt;password&gt;\n" +
		"• /demo — demo mode\n" +
		"• /logout\n" +
		"• /reset &lt;email&gt; — mail a password reset code\n" +
		"• /newpassword &lt;code&gt; &lt;password&gt;\n" +
		"<b>Dashboard</b>\n" +
		"• /dashboard — overview, also /report\n" +
		"• /progress — overall and per project\n" +
		"• /projects, /newproject, /deleteproject &lt;n&gt;\n" +
		"• /categories, /newcategory &lt;name&gt;, /deletecategory &lt;n&gt;\n" +
		"• /tasks [project n | general], /newtask, /toggle &lt;n&gt;, /deletetask &lt;n&gt;\n" +
		"• /theme — switch dark mode\n" +
		"• /cancel — stop the current input"
	return b.sendText(chatID, text)
}

func (b *Bot) handleLogin(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /login &lt;email&gt; &lt;password&gt;")
	}
	session, err := b.storeFor(ctx, chatID).Login(ctx, fields[0], fields[1])
	if err != nil {
		return b.sendError(chatID, err)
	}
	b.log.Info("chat signed in", zap.Int64("chat", chatID), zap.String("user", session.UserID))
	return b.sendText(chatID, fmt.Sprintf("✅ Signed in as <b>%s</b>.", escape(session.DisplayName)))
}

func (b *Bot) handleSignup(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return b.sendText(chatID, "Usage: /signup &lt;name&gt; &lt;email&gt; &lt;password&gt;")
	}
	name := strings.Join(fields[:len(fields)-2], " ")
	email, password := fields[len(fields)-2], fields[len(fields)-1]

	session, err := b.storeFor(ctx, chatID).Signup(ctx, name, email, password)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🎉 Welcome, <b>%s</b>! Start with /newproject.", escape(session.DisplayName)))
}

func (b *Bot) handleDemo(ctx context.Context, chatID int64) error {
	if _, err := b.storeFor(ctx, chatID).LoginDemo(ctx); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, "🧪 Demo mode. Everything you create is kept for this chat only and returns on the next /demo.")
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, "You are not signed in.")
	}
	if err := s.Logout(ctx); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, "👋 Signed out.")
}

func (b *Bot) handleReset(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		return b.sendText(chatID, "Usage: /reset &lt;email&gt;")
	}
	if err := b.storeFor(ctx, chatID).ResetPassword(ctx, args); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, "📬 If that address has an account, a reset code is on its way. Then use /newpassword &lt;code&gt; &lt;password&gt;.")
}

func (b *Bot) handleNewPassword(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /newpassword &lt;code&gt; &lt;password&gt;")
	}
	if err := b.storeFor(ctx, chatID).ConfirmPasswordReset(ctx, fields[0], fields[1]); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, "🔑 Password changed. Sign in with /login.")
}

func (b *Bot) handleDashboard(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	s.SelectMenu(store.MenuDashboard)
	d, ok := s.Dashboard()
	if !ok {
		return b.sendText(chatID, msgSignIn)
	}
	return b.sendText(chatID, b.reports.DashboardSummary(d, time.Now()))
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ <b>Overall</b>: %d%%\n", s.OverallProgress()))
	for _, p := range s.Projects() {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", escape(p.Name), service.ProgressLine(p.Progress)))
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleProjects(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	s.SelectMenu(store.MenuProjects)

	projects := s.Projects()
	if len(projects) == 0 {
		return b.sendText(chatID, "No projects yet. Create one with /newproject.")
	}

	var sb strings.Builder
	sb.WriteString("📁 <b>Projects</b>\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, p := range projects {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, service.FormatProject(p)))
		if i < maxButtons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📋 %d · %s", i+1, shortTitle(p.Name, 20)), cbProjectTasksPrefix+p.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeleteProjectPrefix+p.ID),
			))
		}
	}
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleDeleteProject(ctx context.Context, chatID int64, args string) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	projects := s.Projects()
	i, err := parseIndex(args, len(projects))
	if err != nil {
		return b.sendText(chatID, "Usage: /deleteproject &lt;n&gt; with n from /projects.")
	}
	return b.askDeleteProject(chatID, s, projects[i].ID)
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	s.SelectMenu(store.MenuCategories)

	categories := s.Categories()
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet. Add one with /newcategory &lt;name&gt;.")
	}
	var sb strings.Builder
	sb.WriteString("🏷 <b>Categories</b>\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range categories {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(c.Name)))
		if i < maxButtons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 %d · %s", i+1, shortTitle(c.Name, 24)), cbDeleteCategoryPrefix+c.ID),
			))
		}
	}
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleNewCategory(ctx context.Context, chatID int64, args string) error {
	s := b.storeFor(ctx, chatID)
	if args == "" {
		if _, ok := s.Session(); !ok {
			return b.sendText(chatID, msgSignIn)
		}
		s.OpenModal(store.ModalAddCategory)
		b.setConversation(chatID, &conversationState{stage: stageCategoryName})
		return b.sendWithReplyMarkup(chatID, "🏷 Name of the new category?", cancelKeyboard())
	}
	return b.finishCategory(ctx, chatID, s, args)
}

func (b *Bot) finishCategory(ctx context.Context, chatID int64, s *store.Store, name string) error {
	category, err := s.AddCategory(ctx, name)
	s.CloseModal()
	if err != nil {
		return b.sendError(chatID, err)
	}
	if category == nil {
		return b.sendText(chatID, "A category needs a name.")
	}
	return b.sendText(chatID, fmt.Sprintf("🏷 Category <b>%s</b> added.", escape(category.Name)))
}

func (b *Bot) handleDeleteCategory(ctx context.Context, chatID int64, args string) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	categories := s.Categories()
	i, err := parseIndex(args, len(categories))
	if err != nil {
		return b.sendText(chatID, "Usage: /deletecategory &lt;n&gt; with n from /categories.")
	}
	return b.askDeleteCategory(chatID, s, categories[i].ID)
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64, args string) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	if args == "" {
		return b.sendTaskList(chatID, s, "")
	}
	if isGeneralInput(args) {
		return b.sendTaskList(chatID, s, generalScope)
	}
	projects := s.Projects()
	i, err := parseIndex(args, len(projects))
	if err != nil {
		return b.sendText(chatID, "Usage: /tasks [n | general] with n from /projects.")
	}
	return b.sendTaskList(chatID, s, projects[i].ID)
}

// generalScope selects the tasks that belong to no project.
const generalScope = "general"

// sendTaskList lists the tasks of one project, the unscoped ones for
// generalScope, or all tasks when projectID is empty. Numbers always refer to
// the full list so /toggle works from any view.
func (b *Bot) sendTaskList(chatID int64, s *store.Store, projectID string) error {
	d, _ := s.Dashboard()
	all := s.Tasks()
	numbers := make(map[string]int, len(all))
	for i, t := range all {
		numbers[t.ID] = i + 1
	}

	tasks := all
	title := "✅ <b>Tasks</b>"
	switch projectID {
	case "":
	case generalScope:
		tasks = s.GeneralTasks()
		title = "✅ <b>" + store.GeneralTasksLabel + "</b>"
	default:
		tasks = s.ProjectTasks(projectID)
		title = fmt.Sprintf("✅ <b>%s</b> · %s", escape(d.ProjectNames[projectID]), service.ProgressLine(s.ProjectProgress(projectID)))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, title+"\nNo tasks yet. Add one with /newtask.")
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, t := range tasks {
		n := numbers[t.ID]
		sb.WriteString(fmt.Sprintf("%d. %s", n, service.FormatTask(t, d.ProjectLabel(t))))
		if i < maxButtons {
			toggle := "✅"
			if t.Completed {
				toggle = "↩️"
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d · %s", toggle, n, shortTitle(t.Name, 20)), cbTogglePrefix+t.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeleteTaskPrefix+t.ID),
			))
		}
	}
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleToggle(ctx context.Context, chatID int64, args string) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	tasks := s.Tasks()
	i, err := parseIndex(args, len(tasks))
	if err != nil {
		return b.sendText(chatID, "Usage: /toggle &lt;n&gt; with n from /tasks.")
	}
	return b.toggleTask(ctx, chatID, s, tasks[i].ID)
}

func (b *Bot) toggleTask(ctx context.Context, chatID int64, s *store.Store, taskID string) error {
	task, err := s.ToggleTask(ctx, taskID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if task.Completed {
		return b.sendText(chatID, fmt.Sprintf("✅ «%s» done. Overall %d%%.", escape(task.Name), s.OverallProgress()))
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ «%s» reopened. Overall %d%%.", escape(task.Name), s.OverallProgress()))
}

func (b *Bot) handleDeleteTask(ctx context.Context, chatID int64, args string) error {
	s := b.storeFor(ctx, chatID)
	if _, ok := s.Session(); !ok {
		return b.sendText(chatID, msgSignIn)
	}
	tasks := s.Tasks()
	i, err := parseIndex(args, len(tasks))
	if err != nil {
		return b.sendText(chatID, "Usage: /deletetask &lt;n&gt; with n from /tasks.")
	}
	return b.askDeleteTask(chatID, s, tasks[i])
}

func (b *Bot) handleTheme(ctx context.Context, chatID int64) error {
	if b.storeFor(ctx, chatID).ToggleDarkMode() {
		return b.sendText(chatID, "🌙 Dark mode on.")
	}
	return b.sendText(chatID, "☀️ Light mode on.")
}

// parseIndex turns a 1-based position into a slice index below n.
func parseIndex(args string, n int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return 0, err
	}
	if value < 1 || value > n {
		return 0, fmt.Errorf("position %d out of range 1..%d", value, n)
	}
	return value - 1, nil
}

func taskByID(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
