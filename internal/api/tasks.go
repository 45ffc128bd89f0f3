package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Joseda-hg/supertask/internal/model"
)

// TaskListOptions filters the task list server side. Zero values are omitted.
type TaskListOptions struct {
	Priority string `url:"priority,omitempty"`
	Status   string `url:"status,omitempty"`
	Category int64  `url:"category,omitempty"`
	DueDate  string `url:"due_date,omitempty"`
	Ordering string `url:"ordering,omitempty"`
	Page     int    `url:"page,omitempty"`
}

var taskQueryOrder = []string{"priority", "status", "category", "due_date", "ordering", "page"}

type TaskService struct {
	client *Client
}

func (s *TaskService) List(ctx context.Context, opts TaskListOptions) (model.Page[model.Task], error) {
	rawQuery, err := encodeQuery(opts, taskQueryOrder...)
	if err != nil {
		return model.Page[model.Task]{}, fmt.Errorf("encode task query: %w", err)
	}

	var page model.Page[model.Task]
	err = s.client.Do(ctx, http.MethodGet, withQuery("/tasks/", rawQuery), nil, &page)
	return page, err
}

func (s *TaskService) Create(ctx context.Context, input model.TaskInput) (model.Task, error) {
	var task model.Task
	err := s.client.Do(ctx, http.MethodPost, "/tasks/", input, &task)
	return task, err
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	var task model.Task
	err := s.client.Do(ctx, http.MethodGet, taskPath(id), nil, &task)
	return task, err
}

func (s *TaskService) Update(ctx context.Context, id int64, input model.TaskInput) (model.Task, error) {
	var task model.Task
	err := s.client.Do(ctx, http.MethodPut, taskPath(id), input, &task)
	return task, err
}

func (s *TaskService) PartialUpdate(ctx context.Context, id int64, input model.TaskInput) (model.Task, error) {
	var task model.Task
	err := s.client.Do(ctx, http.MethodPatch, taskPath(id), input, &task)
	return task, err
}

func (s *TaskService) ToggleStatus(ctx context.Context, id int64) (model.Task, error) {
	var task model.Task
	err := s.client.Do(ctx, http.MethodPatch, taskPath(id)+"toggle-status/", nil, &task)
	return task, err
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.client.Do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d/", id)
}
