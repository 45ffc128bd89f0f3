package tui

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/tasklist"
)

var (
	priorityFilterOptions = []string{"", model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	statusFilterOptions   = []string{"", model.StatusPending, model.StatusInProgress, model.StatusCompleted}
)

func formatTaskSummary(task model.TaskView) string {
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}
	due := task.DueDate
	if due == "" {
		due = "no due date"
	}
	return fmt.Sprintf("%s %s | %s | %s | %s | %s", check, task.Title, task.Priority, task.Status, due, task.Category.Name)
}

func formatStats(server model.DashboardStats, local model.TaskStats) string {
	return strings.Join([]string{
		fmt.Sprintf("Total: %d", server.TotalTasks),
		fmt.Sprintf("Completed: %d", server.Completed),
		fmt.Sprintf("In progress: %d", server.InProgress),
		fmt.Sprintf("Overdue: %d", server.Overdue),
		fmt.Sprintf("High priority: %d", server.HighPriority),
		fmt.Sprintf("Due today: %d", server.DueToday),
		fmt.Sprintf("Pending here: %d (%d high, %d overdue)", local.Pending, local.HighPriority, local.Overdue),
	}, "\n")
}

func labelOrAny(value string) string {
	if value == "" {
		return "any"
	}
	return value
}

func sortLabel(key tasklist.SortKey) string {
	switch key {
	case tasklist.SortDueDate:
		return "due date"
	case tasklist.SortPriority:
		return "priority"
	case tasklist.SortTitle:
		return "title"
	case tasklist.SortCreatedAt:
		return "newest"
	default:
		return string(key)
	}
}

func cycleOption(options []string, current string, delta int) string {
	if len(options) == 0 {
		return ""
	}
	index := 0
	for i, option := range options {
		if option == current {
			index = i
			break
		}
	}
	index = (index + delta + len(options)) % len(options)
	return options[index]
}
