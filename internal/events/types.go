package events

import "time"

// Kind identifies what changed.
type Kind string

const (
	SessionStarted  Kind = "session.started"
	SessionEnded    Kind = "session.ended"
	CacheRefreshed  Kind = "cache.refreshed"
	ProjectAdded    Kind = "project.added"
	ProjectDeleted  Kind = "project.deleted"
	CategoryAdded   Kind = "category.added"
	CategoryDeleted Kind = "category.deleted"
	TaskAdded       Kind = "task.added"
	TaskUpdated     Kind = "task.updated"
	TaskDeleted     Kind = "task.deleted"
)

// Kinds lists every event kind in a stable order.
var Kinds = []Kind{
	SessionStarted, SessionEnded, CacheRefreshed,
	ProjectAdded, ProjectDeleted,
	CategoryAdded, CategoryDeleted,
	TaskAdded, TaskUpdated, TaskDeleted,
}

// DataChange reports whether k signals a change to owner data that other
// views of the same owner should pick up.
func (k Kind) DataChange() bool {
	switch k {
	case ProjectAdded, ProjectDeleted, CategoryAdded, CategoryDeleted, TaskAdded, TaskUpdated, TaskDeleted:
		return true
	}
	return false
}

// Event is a change notification.
type Event struct {
	Kind      Kind      `json:"kind"`
	OwnerID   string    `json:"ownerId"`
	EntityID  string    `json:"entityId,omitempty"`
	Origin    string    `json:"origin,omitempty"` // id of the store that caused it
	Demo      bool      `json:"demo,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Sequence  int64     `json:"sequence"`
}
