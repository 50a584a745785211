package domain

// Event describes a completed mutation, published to the change queue for
// downstream consumers.
type Event struct {
	UserID    string `json:"userId"`
	Entity    string `json:"entity"`
	Action    string `json:"action"`
	EntityID  string `json:"entityId"`
	BoardID   string `json:"boardId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Entity and action values used in change events.
const (
	EntityBoard = "board"
	EntityTodo  = "todo"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
