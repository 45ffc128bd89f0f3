package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/supertask/internal/format"
	"github.com/Joseda-hg/supertask/internal/model"
)

type formKind int

const (
	formTask formKind = iota
	formLogin
	formRegister
)

func (k formKind) auth() bool {
	return k == formLogin || k == formRegister
}

func (k formKind) title(taskID int64) string {
	switch k {
	case formLogin:
		return "Log in"
	case formRegister:
		return "Create account"
	}
	if taskID != 0 {
		return "Edit Task"
	}
	return "New Task"
}

// formField is one editable line. Fields with Options cycle through them
// instead of taking text.
type formField struct {
	Label   string
	Value   string
	Options []string
	Secret  bool
}

func (f formField) display() string {
	if f.Secret {
		return strings.Repeat("*", len([]rune(f.Value)))
	}
	return f.Value
}

const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldStatus
	fieldDue
	fieldCategory
)

const (
	fieldUsername = iota
	fieldPassword
)

const (
	fieldRegisterUsername = iota
	fieldRegisterEmail
	fieldRegisterPassword
	fieldRegisterConfirm
	fieldRegisterFirstName
	fieldRegisterLastName
)

var (
	priorityOptions = []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}
	statusOptions   = []string{model.StatusPending, model.StatusInProgress, model.StatusCompleted}
)

func buildTaskFields(task *model.TaskView, categories []model.Category) []formField {
	categoryOptions := []string{format.Uncategorized}
	for _, category := range categories {
		categoryOptions = append(categoryOptions, category.Name)
	}

	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "Priority (space/←→)", Options: priorityOptions},
		{Label: "Status (space/←→)", Options: statusOptions},
		{Label: "Due (YYYY-MM-DD)"},
		{Label: "Category (space/←→)", Options: categoryOptions},
	}

	if task == nil {
		fields[fieldPriority].Value = model.PriorityMedium
		fields[fieldStatus].Value = model.StatusPending
		fields[fieldCategory].Value = format.Uncategorized
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldPriority].Value = task.Priority
	fields[fieldStatus].Value = task.Status
	fields[fieldDue].Value = task.DueDate
	fields[fieldCategory].Value = task.Category.Name
	return fields
}

func parseTaskForm(fields []formField) (model.TaskView, error) {
	title := strings.TrimSpace(fields[fieldTitle].Value)
	if title == "" {
		return model.TaskView{}, fmt.Errorf("title is required")
	}

	due, err := parseDue(fields[fieldDue].Value)
	if err != nil {
		return model.TaskView{}, err
	}

	return model.TaskView{
		Title:       title,
		Description: strings.TrimSpace(fields[fieldDescription].Value),
		Priority:    fields[fieldPriority].Value,
		Status:      fields[fieldStatus].Value,
		DueDate:     due,
		Category:    model.TaskCategory{Name: fields[fieldCategory].Value},
	}, nil
}

func parseDue(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", trimmed); err != nil {
		return "", fmt.Errorf("invalid due date")
	}
	return trimmed, nil
}

func parseTaskID(id string) (int64, error) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", id)
	}
	return parsed, nil
}

func newAuthForm(kind formKind) *formState {
	if kind == formRegister {
		return &formState{kind: kind, fields: []formField{
			{Label: "Username"},
			{Label: "Email"},
			{Label: "Password", Secret: true},
			{Label: "Confirm password", Secret: true},
			{Label: "First name"},
			{Label: "Last name"},
		}}
	}
	return &formState{kind: formLogin, fields: []formField{
		{Label: "Username"},
		{Label: "Password", Secret: true},
	}}
}

func parseRegisterForm(fields []formField) model.RegisterInput {
	return model.RegisterInput{
		Username:        strings.TrimSpace(fields[fieldRegisterUsername].Value),
		Email:           strings.TrimSpace(fields[fieldRegisterEmail].Value),
		Password:        fields[fieldRegisterPassword].Value,
		PasswordConfirm: fields[fieldRegisterConfirm].Value,
		FirstName:       strings.TrimSpace(fields[fieldRegisterFirstName].Value),
		LastName:        strings.TrimSpace(fields[fieldRegisterLastName].Value),
	}
}
