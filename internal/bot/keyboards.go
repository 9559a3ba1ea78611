package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-dashboard/internal/model"
)

const (
	btnSkip             = "⏭️ Skip"
	btnConfirm          = "✅ Confirm"
	btnCancel           = "↩️ Cancel"
	btnCancelDialog     = "⏪ Cancel input"
	btnGeneral          = "General"
	menuLabelDashboard  = "📊 Dashboard"
	menuLabelProjects   = "📁 Projects"
	menuLabelTasks      = "✅ Tasks"
	menuLabelNewTask    = "➕ New task"
	menuLabelCategories = "🏷 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

var projectIcons = []string{"📁", "💼", "🏠", "📚", "💪", "🎨", "🛒", "🚀"}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDashboard),
			tgbotapi.NewKeyboardButton(menuLabelProjects),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func categoryKeyboard(categories []model.Category) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, c := range categories {
		row = append(row, tgbotapi.NewKeyboardButton(c.Name))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func iconKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var icons []tgbotapi.KeyboardButton
	for _, icon := range projectIcons {
		icons = append(icons, tgbotapi.NewKeyboardButton(icon))
	}
	kb := tgbotapi.NewReplyKeyboard(
		icons[:4],
		icons[4:],
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(priorityLabel(model.PriorityLow)),
			tgbotapi.NewKeyboardButton(priorityLabel(model.PriorityMedium)),
			tgbotapi.NewKeyboardButton(priorityLabel(model.PriorityHigh)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func projectKeyboard(projects []model.Project) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnGeneral)),
	}
	for i, p := range projects {
		if i >= maxButtons {
			break
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(p.Name)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴 High"
	case model.PriorityLow:
		return "🟢 Low"
	default:
		return "🟡 Medium"
	}
}

// menuAlias maps a main menu button to its command.
func menuAlias(text string) (string, bool) {
	switch strings.TrimSpace(text) {
	case menuLabelDashboard:
		return "dashboard", true
	case menuLabelProjects:
		return "projects", true
	case menuLabelTasks:
		return "tasks", true
	case menuLabelNewTask:
		return "newtask", true
	case menuLabelCategories:
		return "categories", true
	case menuLabelHelp:
		return "help", true
	}
	return "", false
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isGeneralInput(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), btnGeneral)
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}
