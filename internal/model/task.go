package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks a task. The zero value is not valid; use ParsePriority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low/medium/high (any case). Empty input yields medium.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Task represents a single to-do item, optionally scoped to a project.
type Task struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"index;size:36" json:"ownerId"`
	ProjectID *string   `gorm:"index;size:36" json:"projectId"`
	Name      string    `json:"name"`
	Priority  Priority  `gorm:"size:8;default:medium" json:"priority"`
	Completed bool      `gorm:"default:false" json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// General reports whether the task belongs to no project.
func (t Task) General() bool {
	return t.ProjectID == nil || *t.ProjectID == ""
}

// InProject reports whether the task references projectID.
func (t Task) InProject(projectID string) bool {
	return t.ProjectID != nil && *t.ProjectID == projectID
}
