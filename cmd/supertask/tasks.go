package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/export"
	"github.com/Joseda-hg/supertask/internal/format"
	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/tasklist"
)

type listFlags struct {
	search   string
	priority string
	status   string
	category string
	due      string
	sort     string
	page     int
	all      bool
}

func newTasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(opts),
		newTasksExportCmd(opts),
		newTasksAddCmd(opts),
		newTasksDoneCmd(opts),
		newTasksDeleteCmd(opts),
	)
	return cmd
}

func newTasksListCmd(opts *rootOptions) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			key, ok := tasklist.ParseSortKey(flags.sort)
			if !ok {
				return fmt.Errorf("unknown sort key %q", flags.sort)
			}
			tasks, err := fetchTasks(ctx, rt, flags)
			if err != nil {
				return err
			}

			size := tasklist.PageSize
			if flags.all {
				size = max(len(tasks), 1)
			}
			view := tasklist.NewView(size)
			view.SetTasks(tasks)
			view.SetFilters(model.TaskFilters{Search: flags.search, Priority: flags.priority, Status: flags.status})
			view.SetSort(key)
			view.SetPage(flags.page)

			return printTasks(cmd.OutOrStdout(), view)
		}),
	}

	addListFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.sort, "sort", string(tasklist.SortDueDate), "sort key (dueDate, priority, title, createdAt)")
	cmd.Flags().IntVar(&flags.page, "page", 1, "page number")
	cmd.Flags().BoolVar(&flags.all, "all", false, "show every matching task on one page")
	return cmd
}

func newTasksExportCmd(opts *rootOptions) *cobra.Command {
	var (
		flags listFlags
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered tasks to a CSV file",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			key, ok := tasklist.ParseSortKey(flags.sort)
			if !ok {
				return fmt.Errorf("unknown sort key %q", flags.sort)
			}
			fetched, err := fetchTasks(ctx, rt, flags)
			if err != nil {
				return err
			}
			tasks := exportRows(fetched, flags, key)

			if dir == "" {
				dir = rt.cfg.ExportDir
			}
			path, err := export.WriteFile(dir, tasks, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d tasks to %s\n", len(tasks), path)
			return nil
		}),
	}

	addListFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.sort, "sort", string(tasklist.SortDueDate), "sort key (dueDate, priority, title, createdAt)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory (defaults to export_dir)")
	return cmd
}

func newTasksAddCmd(opts *rootOptions) *cobra.Command {
	var view model.TaskView

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			view.Title = strings.TrimSpace(strings.Join(args, " "))
			if view.Title == "" {
				return errors.New("title is required")
			}
			if view.DueDate != "" {
				if _, err := time.Parse(time.DateOnly, view.DueDate); err != nil {
					return fmt.Errorf("due date must be YYYY-MM-DD: %w", err)
				}
			}

			server, err := serverCategories(ctx, rt)
			if err != nil {
				return err
			}
			task, err := rt.session.Client().Tasks.Create(ctx, format.CreateInput(view, server))
			if err != nil {
				return err
			}
			created := format.Task(task, format.MergeCategories(format.DefaultCategories(), server))
			fmt.Fprintf(cmd.OutOrStdout(), "created #%s %s\n", created.ID, created.Title)
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.StringVarP(&view.Description, "description", "m", "", "description")
	flags.StringVarP(&view.Priority, "priority", "p", model.PriorityMedium, "priority (Low, Medium, High)")
	flags.StringVar(&view.DueDate, "due", "", "due date (YYYY-MM-DD)")
	flags.StringVarP(&view.Category.Name, "category", "c", "", "category name")
	return cmd
}

func newTasksDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"done"},
		Short:   "Toggle a task between pending and completed",
		Args:    cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := rt.session.Client().Tasks.ToggleStatus(ctx, id)
			if err != nil {
				return err
			}
			status, ok := format.StatusFromAPI(task.Status)
			if !ok {
				status = task.Status
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s: %s\n", task.ID, task.Title, status)
			return nil
		}),
	}
}

func newTasksDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := rt.session.Client().Tasks.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
			return nil
		}),
	}
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the default and server categories",
		Args:    cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			server, err := serverCategories(ctx, rt)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR\tTASKS")
			for _, category := range format.MergeCategories(format.DefaultCategories(), server) {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", category.ID, category.Name, category.Color, category.TaskCount)
			}
			return w.Flush()
		}),
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("name is required")
			}
			category, err := rt.session.Client().Categories.Create(ctx, model.CategoryInput{Name: name, Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created category #%d %s\n", category.ID, category.Name)
			return nil
		}),
	}
	add.Flags().StringVar(&color, "color", "", "hex colour, e.g. #3b82f6")

	cmd.AddCommand(list, add)
	return cmd
}

func addListFlags(cmd *cobra.Command, flags *listFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.search, "search", "s", "", "case-insensitive title match")
	f.StringVar(&flags.priority, "priority", "", "priority (Low, Medium, High)")
	f.StringVar(&flags.status, "status", "", "status (Pending, In Progress, Completed)")
	f.StringVarP(&flags.category, "category", "c", "", "category name, filtered by the server")
	f.StringVar(&flags.due, "due", "", "due date (YYYY-MM-DD), filtered by the server")
}

// fetchTasks loads the first server page of tasks, mapped for display.
// Category and due date go to the server; the rest is filtered locally.
func fetchTasks(ctx context.Context, rt *runtime, flags listFlags) ([]model.TaskView, error) {
	server, err := serverCategories(ctx, rt)
	if err != nil {
		return nil, err
	}
	categories := format.MergeCategories(format.DefaultCategories(), server)

	opts := api.TaskListOptions{DueDate: flags.due}
	if flags.category != "" {
		category, ok := format.FindCategory(server, flags.category)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", flags.category)
		}
		opts.Category = category.ID
	}

	page, err := rt.session.Client().Tasks.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	rt.log.WithField("count", page.Count).Debug("tasks loaded")
	return format.Tasks(page.Results, categories), nil
}

func serverCategories(ctx context.Context, rt *runtime) ([]model.Category, error) {
	if !rt.session.IsAuthenticated() {
		return nil, errors.New("not logged in, run supertask login")
	}
	page, err := rt.session.Client().Categories.List(ctx, api.CategoryListOptions{})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return page.Results, nil
}

// exportRows is every task matching the local filters in sort order,
// regardless of page.
func exportRows(tasks []model.TaskView, flags listFlags, key tasklist.SortKey) []model.TaskView {
	view := tasklist.NewView(tasklist.PageSize)
	view.SetTasks(tasks)
	view.SetFilters(model.TaskFilters{Search: flags.search, Priority: flags.priority, Status: flags.status})
	view.SetSort(key)
	return view.Visible()
}

func printTasks(out io.Writer, view *tasklist.View) error {
	rows := view.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "no tasks")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE\tCATEGORY")
	for _, task := range rows {
		due := task.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", task.ID, task.Title, task.Priority, task.Status, due, task.Category.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "page %d/%d, %d matching, sorted by %s\n",
		view.Page(), view.TotalPages(), len(view.Visible()), view.SortKey())
	return err
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}
