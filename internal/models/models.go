package models

import "time"

// User is a registered account. The password hash never leaves the
// server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Project groups tasks and sprints under a single owner. Members are
// every participant except the owner; the owner never appears in the
// member list.
type Project struct {
	ID               int64           `json:"id"`
	OwnerID          int64           `json:"owner_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	StartDate        *Date           `json:"start_date"`
	EndDate          *Date           `json:"end_date"`
	SprintLengthDays int             `json:"sprint_length_days"`
	Status           string          `json:"status"`
	Members          []ProjectMember `json:"members,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProjectMember is a non-owner participant together with their
// effective task-editing permission.
type ProjectMember struct {
	User         User `json:"user"`
	CanEditTasks bool `json:"can_edit_tasks"`
}

// Sprint is a contiguous slice of a project's timeline. Start and end
// are inclusive.
type Sprint struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Name        string    `json:"name"`
	StartDate   Date      `json:"start_date"`
	EndDate     Date      `json:"end_date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is a unit of work inside a project. SprintID and AssignedUserID
// are non-owning references and become NULL when the sprint or user
// goes away.
type Task struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	SprintID       *int64    `json:"sprint_id"`
	AssignedUserID *int64    `json:"assigned_user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	StartDate      *Date     `json:"start_date"`
	DueDate        *Date     `json:"due_date"`
	EndDate        *Date     `json:"end_date"`
	Locked         bool      `json:"locked"`
	Completed      bool      `json:"completed"`
	Subtasks       []Subtask `json:"subtasks,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Subtask is a checklist item belonging to a task.
type Subtask struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Task statuses supported by the board columns.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ValidTaskStatuses enumerates the statuses supported by the board columns.
var ValidTaskStatuses = map[string]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusDone:       {},
}

// ValidTaskPriorities enumerates the supported task priorities.
var ValidTaskPriorities = map[string]struct{}{
	"low":    {},
	"medium": {},
	"high":   {},
}

// ValidProjectStatuses enumerates the supported project statuses.
var ValidProjectStatuses = map[string]struct{}{
	"active":    {},
	"completed": {},
	"archived":  {},
}

// CompletionPercentage is the share of completed subtasks as an integer
// percentage, truncated. A task without subtasks is 0%.
func (t *Task) CompletionPercentage() int {
	total := len(t.Subtasks)
	if total == 0 {
		return 0
	}
	done := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done * 100 / total
}
