package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/supertask/internal/model"
)

func TestCSVEscapesQuotes(t *testing.T) {
	out, err := CSV([]model.TaskView{{
		Title:     `He said "hi"`,
		Category:  model.TaskCategory{Name: "Work"},
		Priority:  model.PriorityHigh,
		Status:    model.StatusPending,
		DueDate:   "2024-05-01",
		CreatedAt: "2024-04-30",
	}})
	require.NoError(t, err)

	assert.Equal(t,
		"Title,Description,Due Date,Category,Priority,Status,Created At\n"+
			`"He said ""hi""","","2024-05-01","Work","High","Pending","2024-04-30"`,
		out)
}

func TestCSVKeepsCommasAndNewlinesInsideQuotes(t *testing.T) {
	out, err := CSV([]model.TaskView{
		{Title: "a, b", Description: "line1\nline2"},
		{Title: "second"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"a, b","line1`+"\n"+`line2"`)
	assert.Contains(t, out, "\n"+`"second",`)
}

func TestCSVEmpty(t *testing.T) {
	_, err := CSV(nil)
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("x", -3*3600))
	assert.Equal(t, "tasks_2024-03-10.csv", Filename(now))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	path, err := WriteFile(dir, []model.TaskView{{Title: "one"}}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tasks_2024-05-01.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Title,Description,Due Date,Category,Priority,Status,Created At\n\"one\",\"\",\"\",\"\",\"\",\"\",\"\"", string(data))

	_, err = WriteFile(dir, nil, now)
	assert.ErrorIs(t, err, ErrNoTasks)
}
