// Package dashboard loads everything the main screen shows in one joined
// fetch.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/format"
	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/tasklist"
)

var DefaultQuote = model.Quote{
	Quote:  "Success is the sum of small efforts, repeated day in and day out.",
	Author: "Robert Collier",
}

type TaskLister interface {
	List(ctx context.Context, opts api.TaskListOptions) (model.Page[model.Task], error)
}

type Board interface {
	Stats(ctx context.Context) (model.DashboardStats, error)
	Quote(ctx context.Context) (model.Quote, error)
}

type Result struct {
	Tasks []model.TaskView
	Stats model.DashboardStats
	Quote model.Quote
}

// DisplayQuote falls back to DefaultQuote when the API sent no text.
func (r Result) DisplayQuote() model.Quote {
	if r.Quote.Quote == "" {
		return DefaultQuote
	}
	return r.Quote
}

type Loader struct {
	tasks      TaskLister
	board      Board
	categories []model.Category
	now        func() time.Time
}

func NewLoader(tasks TaskLister, board Board, categories []model.Category) *Loader {
	return &Loader{tasks: tasks, board: board, categories: categories, now: time.Now}
}

// SetClock replaces the time source used for the due today count.
func (l *Loader) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Loader) SetCategories(categories []model.Category) {
	l.categories = categories
}

// Load fetches tasks, stats and quote concurrently. If any call fails the
// whole load fails and no partial result is returned.
func (l *Loader) Load(ctx context.Context, opts api.TaskListOptions) (Result, error) {
	var (
		page  model.Page[model.Task]
		stats model.DashboardStats
		quote model.Quote
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		page, err = l.tasks.List(groupCtx, opts)
		return err
	})
	group.Go(func() error {
		var err error
		stats, err = l.board.Stats(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		quote, err = l.board.Quote(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	tasks := format.Tasks(page.Results, l.categories)
	stats.DueToday = tasklist.DueOn(tasks, Today(l.now()))

	return Result{Tasks: tasks, Stats: stats, Quote: quote}, nil
}

// Today is the UTC calendar date of t as YYYY-MM-DD.
func Today(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
