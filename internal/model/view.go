package model

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"

	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

const (
	WirePriorityLow    = "low"
	WirePriorityMedium = "medium"
	WirePriorityHigh   = "high"

	WireStatusPending    = "pending"
	WireStatusInProgress = "in_progress"
	WireStatusCompleted  = "completed"
)

type TaskCategory struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TaskView is the UI-facing shape of a task. Enum values are title case.
type TaskView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    TaskCategory `json:"category"`
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	DueDate     string       `json:"dueDate"`
	CreatedAt   string       `json:"createdAt"`
	Completed   bool         `json:"completed"`
}

type TaskFilters struct {
	Search   string `json:"search"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

func (f TaskFilters) Empty() bool {
	return f.Search == "" && f.Priority == "" && f.Status == ""
}

type TaskStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Pending      int `json:"pending"`
	Overdue      int `json:"overdue"`
	HighPriority int `json:"highPriority"`
	DueToday     int `json:"dueToday"`
}
