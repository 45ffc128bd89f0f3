// Package tasklist filters, sorts and pages task views in memory.
package tasklist

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/supertask/internal/model"
)

const PageSize = 5

type SortKey string

const (
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
	SortTitle     SortKey = "title"
	SortCreatedAt SortKey = "createdAt"
)

var SortKeys = []SortKey{SortDueDate, SortPriority, SortTitle, SortCreatedAt}

func ParseSortKey(value string) (SortKey, bool) {
	for _, key := range SortKeys {
		if string(key) == value {
			return key, true
		}
	}
	return "", false
}

var priorityRank = map[string]int{
	model.PriorityHigh:   3,
	model.PriorityMedium: 2,
	model.PriorityLow:    1,
}

// Filter keeps tasks whose title contains filters.Search, ignoring case, and
// whose priority and status equal the non-empty filter values.
func Filter(tasks []model.TaskView, filters model.TaskFilters) []model.TaskView {
	search := strings.ToLower(filters.Search)
	out := make([]model.TaskView, 0, len(tasks))
	for _, task := range tasks {
		if search != "" && !strings.Contains(strings.ToLower(task.Title), search) {
			continue
		}
		if filters.Priority != "" && task.Priority != filters.Priority {
			continue
		}
		if filters.Status != "" && task.Status != filters.Status {
			continue
		}
		out = append(out, task)
	}
	return out
}

// Sort returns a sorted copy. Unknown keys keep the input order.
func Sort(tasks []model.TaskView, key SortKey) []model.TaskView {
	out := make([]model.TaskView, len(tasks))
	copy(out, tasks)

	var less func(a, b model.TaskView) bool
	switch key {
	case SortDueDate:
		less = func(a, b model.TaskView) bool {
			if a.DueDate == "" {
				return false
			}
			if b.DueDate == "" {
				return true
			}
			return a.DueDate < b.DueDate
		}
	case SortPriority:
		less = func(a, b model.TaskView) bool {
			return priorityRank[a.Priority] > priorityRank[b.Priority]
		}
	case SortTitle:
		collator := collate.New(language.English)
		less = func(a, b model.TaskView) bool {
			return collator.CompareString(a.Title, b.Title) < 0
		}
	case SortCreatedAt:
		less = func(a, b model.TaskView) bool {
			return a.CreatedAt > b.CreatedAt
		}
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Paginate returns the 1-based page of tasks. Out of range pages are empty.
func Paginate(tasks []model.TaskView, page, size int) []model.TaskView {
	if page < 1 || size <= 0 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(tasks) {
		return nil
	}
	end := min(start+size, len(tasks))
	return tasks[start:end]
}
