package model

import "time"

// Category is a free-standing label for projects (work, health, study, etc.).
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string    `gorm:"index;size:36" json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
