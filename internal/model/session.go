package model

import "time"

// Session is the identity currently driving a store, live or demo.
type Session struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	IsDemo      bool      `json:"isDemo"`
	Token       string    `json:"-"`
	StartedAt   time.Time `json:"startedAt"`
}

// Identity is an account known to the authentication provider.
type Identity struct {
	ID             string `gorm:"primaryKey;size:36"`
	Email          string `gorm:"uniqueIndex"`
	DisplayName    string
	PasswordHash   string
	TokenVersion   int    `gorm:"default:0"`
	ResetToken     string `gorm:"index"`
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DemoUser is the fixed profile used for demo sessions.
var DemoUser = Session{
	UserID:      "demo-user",
	DisplayName: "Demo User",
	Email:       "demo@task-dashboard.local",
	IsDemo:      true,
}

// DemoData is the blob persisted locally while in demo mode.
type DemoData struct {
	User       Session    `json:"user"`
	Projects   []Project  `json:"projects"`
	Categories []Category `json:"categories"`
	Tasks      []Task     `json:"tasks"`
}
