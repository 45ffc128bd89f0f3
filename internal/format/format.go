// Package format converts between the API wire shapes and the view shapes
// the terminal and web front ends render.
package format

import (
	"strconv"
	"strings"

	"github.com/Joseda-hg/supertask/internal/model"
)

const (
	Uncategorized      = "Uncategorized"
	UncategorizedColor = "#6b7280"
)

var priorityToAPI = map[string]string{
	model.PriorityHigh:   model.WirePriorityHigh,
	model.PriorityMedium: model.WirePriorityMedium,
	model.PriorityLow:    model.WirePriorityLow,
}

var priorityFromAPI = map[string]string{
	model.WirePriorityHigh:   model.PriorityHigh,
	model.WirePriorityMedium: model.PriorityMedium,
	model.WirePriorityLow:    model.PriorityLow,
}

// In Progress has no wire counterpart here; the API only toggles between
// pending and completed.
var statusToAPI = map[string]string{
	model.StatusCompleted: model.WireStatusCompleted,
	model.StatusPending:   model.WireStatusPending,
}

var statusFromAPI = map[string]string{
	model.WireStatusCompleted:  model.StatusCompleted,
	model.WireStatusPending:    model.StatusPending,
	model.WireStatusInProgress: model.StatusInProgress,
}

func PriorityToAPI(priority string) (string, bool) {
	wire, ok := priorityToAPI[priority]
	return wire, ok
}

func PriorityFromAPI(wire string) (string, bool) {
	priority, ok := priorityFromAPI[wire]
	return priority, ok
}

func StatusToAPI(status string) (string, bool) {
	wire, ok := statusToAPI[status]
	return wire, ok
}

func StatusFromAPI(wire string) (string, bool) {
	status, ok := statusFromAPI[wire]
	return status, ok
}

// Task builds the view of a wire task. categories supplies colours by name.
func Task(task model.Task, categories []model.Category) model.TaskView {
	view := model.TaskView{
		ID:        strconv.FormatInt(task.ID, 10),
		Title:     task.Title,
		Priority:  task.Priority,
		Status:    task.Status,
		CreatedAt: datePart(task.CreatedAt),
		Completed: task.Status == model.WireStatusCompleted,
		Category:  model.TaskCategory{Name: Uncategorized, Color: UncategorizedColor},
	}
	if priority, ok := PriorityFromAPI(task.Priority); ok {
		view.Priority = priority
	}
	if status, ok := StatusFromAPI(task.Status); ok {
		view.Status = status
	}
	if task.Description != nil {
		view.Description = *task.Description
	}
	if task.DueDate != nil {
		view.DueDate = *task.DueDate
	}
	if task.CategoryName != nil && *task.CategoryName != "" {
		view.Category.Name = *task.CategoryName
		if category, ok := FindCategory(categories, *task.CategoryName); ok && category.Color != "" {
			view.Category.Color = category.Color
		}
	}
	return view
}

func Tasks(tasks []model.Task, categories []model.Category) []model.TaskView {
	views := make([]model.TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, Task(task, categories))
	}
	return views
}

func datePart(timestamp string) string {
	date, _, _ := strings.Cut(timestamp, "T")
	return date
}

func FindCategory(categories []model.Category, name string) (model.Category, bool) {
	for _, category := range categories {
		if category.Name == name {
			return category, true
		}
	}
	return model.Category{}, false
}

// CreateInput builds the create payload for a task form. server is the
// category list returned by the API; the category is sent only when its name
// resolves to a server id.
func CreateInput(view model.TaskView, server []model.Category) model.TaskInput {
	input := model.TaskInput{Title: &view.Title}
	if view.Description != "" {
		input.Description = &view.Description
	}
	if priority, ok := PriorityToAPI(view.Priority); ok {
		input.Priority = &priority
	}
	if view.DueDate != "" {
		input.DueDate = &view.DueDate
	}
	if view.Category.Name != "" && view.Category.Name != Uncategorized {
		if category, ok := FindCategory(server, view.Category.Name); ok && category.ID != 0 {
			id := category.ID
			input.Category = &id
		}
	}
	return input
}

// UpdateInput is CreateInput plus the status when it has a wire value.
func UpdateInput(view model.TaskView, server []model.Category) model.TaskInput {
	input := CreateInput(view, server)
	if status, ok := StatusToAPI(view.Status); ok {
		input.Status = &status
	}
	return input
}
