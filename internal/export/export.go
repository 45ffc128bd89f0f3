// Package export renders task views as CSV.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Joseda-hg/supertask/internal/model"
)

var ErrNoTasks = errors.New("no tasks to export")

var header = []string{"Title", "Description", "Due Date", "Category", "Priority", "Status", "Created At"}

// CSV renders the header plus one row per task. Every field is quoted and
// rows are separated by a bare newline.
func CSV(tasks []model.TaskView) (string, error) {
	if len(tasks) == 0 {
		return "", ErrNoTasks
	}

	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, task := range tasks {
		lines = append(lines, row(
			task.Title,
			task.Description,
			task.DueDate,
			task.Category.Name,
			task.Priority,
			task.Status,
			task.CreatedAt,
		))
	}
	return strings.Join(lines, "\n"), nil
}

func row(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = quote(field)
	}
	return strings.Join(quoted, ",")
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Filename is tasks_<date>.csv for the UTC date of now.
func Filename(now time.Time) string {
	return fmt.Sprintf("tasks_%s.csv", now.UTC().Format("2006-01-02"))
}

// WriteFile writes the CSV into dir and returns the file path.
func WriteFile(dir string, tasks []model.TaskView, now time.Time) (string, error) {
	content, err := CSV(tasks)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
