package tasklist

import "github.com/Joseda-hg/supertask/internal/model"

// ComputeStats counts tasks locally. today is a YYYY-MM-DD date; overdue,
// high priority and due today only count pending tasks.
func ComputeStats(tasks []model.TaskView, today string) model.TaskStats {
	stats := model.TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusPending:
			stats.Pending++
		}
		if task.Status != model.StatusPending {
			continue
		}
		if task.DueDate != "" && task.DueDate < today {
			stats.Overdue++
		}
		if task.Priority == model.PriorityHigh {
			stats.HighPriority++
		}
		if task.DueDate == today {
			stats.DueToday++
		}
	}
	return stats
}

// DueOn counts tasks due on date regardless of status.
func DueOn(tasks []model.TaskView, date string) int {
	count := 0
	for _, task := range tasks {
		if task.DueDate == date {
			count++
		}
	}
	return count
}
