package model

type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Profile   Profile `json:"profile"`
}

type Profile struct {
	Avatar *string `json:"avatar"`
	Bio    string  `json:"bio"`
}

type AuthResponse struct {
	User    User   `json:"user"`
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
	Message string `json:"message"`
}

type Message struct {
	Message string `json:"message"`
}

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TaskCount int    `json:"task_count"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Task is the wire shape returned by the API. Enum values are lowercase.
type Task struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Priority     string  `json:"priority"`
	Status       string  `json:"status"`
	DueDate      *string `json:"due_date"`
	Category     *int64  `json:"category"`
	CategoryName *string `json:"category_name"`
	IsOverdue    bool    `json:"is_overdue"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	CompletedAt  *string `json:"completed_at"`
}

// TaskInput is the body of create, update and partial update calls.
// Nil fields are left out of the payload.
type TaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Category    *int64  `json:"category,omitempty"`
}

type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type CategoryStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type DashboardStats struct {
	Completed       int                      `json:"completed"`
	InProgress      int                      `json:"in_progress"`
	Overdue         int                      `json:"overdue"`
	HighPriority    int                      `json:"high_priority"`
	DueToday        int                      `json:"due_today"`
	TotalTasks      int                      `json:"total_tasks"`
	CategoriesStats map[string]CategoryStats `json:"categories_stats"`
}

type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ProfileInput struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type PasswordChange struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}
