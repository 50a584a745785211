package domain

import (
	"strings"
	"time"
)

// Todo is a single task item belonging to one board and one user.
type Todo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	BoardID     string    `json:"boardId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TodoPatch carries a partial update for a todo. Absent fields leave the
// stored value untouched. A present title must be non-blank after trimming.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Validate normalizes present fields in place and rejects invalid ones.
func (p *TodoPatch) Validate() error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return ValidationError{Message: "todo title is required"}
		}
		p.Title = &t
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	return nil
}

// Empty reports whether the patch carries no fields at all.
func (p *TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply writes the present patch fields onto the todo.
func (p *TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// NormalizeTodoTitle trims the given title and rejects empty results.
func NormalizeTodoTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ValidationError{Message: "todo title is required"}
	}
	return title, nil
}
