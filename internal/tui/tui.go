package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/app"
	"github.com/Joseda-hg/supertask/internal/dashboard"
	"github.com/Joseda-hg/supertask/internal/export"
	"github.com/Joseda-hg/supertask/internal/format"
	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/tasklist"
)

const (
	viewHeader     = "header"
	viewFooter     = "footer"
	viewTasks      = "tasks"
	viewStats      = "stats"
	viewCategories = "categories"
	viewQuote      = "quote"
	viewSearch     = "search"
	viewForm       = "form"
	viewHelp       = "help"
)

type UI struct {
	session *app.Session
	client  *api.Client
	loader  *dashboard.Loader
	gui     *gocui.Gui
	log     logrus.FieldLogger

	exportDir string
	now       func() time.Time

	list             *tasklist.View
	stats            model.DashboardStats
	quote            model.Quote
	loaded           bool
	categories       []model.Category
	serverCategories []model.Category

	selected     int
	focus        string
	form         *formState
	formEditor   *formEditor
	searchActive bool
	helpActive   bool
	status       string
}

type formState struct {
	kind   formKind
	taskID int64
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

func Run(session *app.Session, exportDir string, logger logrus.FieldLogger) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(session, exportDir, logger)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	session.Init(context.Background())
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(session *app.Session, exportDir string, logger logrus.FieldLogger) *UI {
	client := session.Client()
	categories := format.DefaultCategories()
	ui := &UI{
		session:    session,
		client:     client,
		loader:     dashboard.NewLoader(client.Tasks, client.Dashboard, categories),
		log:        logger,
		exportDir:  exportDir,
		now:        time.Now,
		list:       tasklist.NewView(tasklist.PageSize),
		categories: categories,
		focus:      viewTasks,
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	global := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.quit},
		{'q', u.quit},
		{'r', u.reload},
		{'g', u.clearFilters},
		{'/', u.startSearch},
		{'p', u.cyclePriorityFilter},
		{'f', u.cycleStatusFilter},
		{'o', u.cycleSort},
		{'n', u.nextPage},
		{'b', u.prevPage},
		{'x', u.toggleStatus},
		{'d', u.deleteTask},
		{'a', u.addTask},
		{'e', u.editTask},
		{'E', u.exportCSV},
		{'L', u.logout},
		{'?', u.toggleHelp},
	}
	for _, binding := range global {
		if err := gui.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	if err := gui.SetKeybinding(viewTasks, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, 'j', gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, 'k', gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyEnter, gocui.ModNone, u.editTask); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEnter, gocui.ModNone, u.submitSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEsc, gocui.ModNone, u.cancelSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlR, gocui.ModNone, u.switchAuthForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewTasks, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, opts)
	}}); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + layout.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	statsY0 := bodyTop
	statsY1 := statsY0 + layout.statsHeight - 1
	categoriesY0 := statsY1 + 1
	categoriesY1 := categoriesY0 + layout.categoriesHeight - 1
	quoteY0 := categoriesY1 + 1
	quoteY1 := bodyBottom

	tasksView, err := gui.SetView(viewTasks, leftX0, bodyTop, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.TitleColor = gocui.ColorRed
	}
	tasksView.Title = fmt.Sprintf("Tasks (page %d/%d)", u.list.Page(), max(u.list.TotalPages(), 1))
	applyViewStyle(tasksView, u.focus == viewTasks, true)
	u.renderTasks(tasksView)

	statsView, err := gui.SetView(viewStats, rightX0, statsY0, rightX1, statsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		statsView.Title = "Stats"
		statsView.TitleColor = gocui.ColorGreen
	}
	applyViewStyle(statsView, false, false)
	u.renderStats(statsView)

	categoriesView, err := gui.SetView(viewCategories, rightX0, categoriesY0, rightX1, categoriesY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		categoriesView.Title = "Categories"
		categoriesView.TitleColor = gocui.ColorCyan
	}
	applyViewStyle(categoriesView, false, false)
	u.renderCategories(categoriesView)

	quoteView, err := gui.SetView(viewQuote, rightX0, quoteY0, rightX1, quoteY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		quoteView.Title = "Quote of the day"
		quoteView.TitleColor = gocui.ColorYellow
	}
	applyViewStyle(quoteView, false, false)
	quoteView.Wrap = true
	u.renderQuote(quoteView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.form != nil

	return nil
}

type layout struct {
	leftWidth        int
	statsHeight      int
	categoriesHeight int
	quoteHeight      int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 8)

	leftWidth := safeWidth * 3 / 5
	if leftWidth < 40 {
		leftWidth = 40
	}
	if leftWidth > safeWidth-18 {
		leftWidth = safeWidth / 2
	}

	statsHeight := 8
	quoteHeight := max(safeHeight/4, 4)
	categoriesHeight := safeHeight - statsHeight - quoteHeight
	if categoriesHeight < 3 {
		categoriesHeight = 3
		statsHeight = max(safeHeight-categoriesHeight-quoteHeight, 3)
	}

	return layout{
		leftWidth:        leftWidth,
		statsHeight:      statsHeight,
		categoriesHeight: categoriesHeight,
		quoteHeight:      quoteHeight,
	}
}

// loadTasks refreshes categories and the dashboard. Without a session it
// opens the login form instead.
func (u *UI) loadTasks() error {
	if !u.session.IsAuthenticated() {
		u.loaded = false
		u.list.SetTasks(nil)
		if u.form == nil || !u.form.kind.auth() {
			u.form = newAuthForm(formLogin)
		}
		return nil
	}

	ctx := context.Background()

	page, err := u.client.Categories.List(ctx, api.CategoryListOptions{})
	if errors.Is(err, api.ErrSessionExpired) {
		u.handleErr(err)
		return nil
	}
	if err != nil {
		u.log.WithError(err).Warn("load categories")
	} else {
		u.serverCategories = page.Results
		u.categories = format.MergeCategories(format.DefaultCategories(), page.Results)
		u.loader.SetCategories(u.categories)
	}

	result, err := u.loader.Load(ctx, api.TaskListOptions{})
	if err != nil {
		u.handleErr(err)
		return nil
	}

	u.list.SetTasks(result.Tasks)
	u.stats = result.Stats
	u.quote = result.DisplayQuote()
	u.loaded = true
	u.clampSelection()
	return nil
}

// handleErr shows err in the status line. An expired session drops the user
// and reopens the login form; it reports true in that case.
func (u *UI) handleErr(err error) bool {
	if errors.Is(err, api.ErrSessionExpired) {
		u.session.Expire()
		u.loaded = false
		u.list.SetTasks(nil)
		u.form = newAuthForm(formLogin)
		u.status = "Session expired, please log in again"
		return true
	}
	u.status = err.Error()
	return false
}

func (u *UI) clampSelection() {
	rows := u.list.Rows()
	if u.selected >= len(rows) {
		u.selected = max(len(rows)-1, 0)
	}
	if u.selected < 0 {
		u.selected = 0
	}
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	filters := u.list.Filters()

	query := strings.TrimSpace(filters.Search)
	if query == "" {
		query = "type / to search"
	}

	user := "not logged in"
	if current := u.session.User(); current != nil {
		user = current.Username
	}

	fmt.Fprintf(view, "Search: %s | Priority: %s | Status: %s | Sort: %s | User: %s",
		query, labelOrAny(filters.Priority), labelOrAny(filters.Status), sortLabel(u.list.SortKey()), user)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | e edit | d delete | x toggle done | E export csv | r reload | L logout | ? help | q quit")
	fmt.Fprintln(view, "/ search | p priority | f status | o sort | n/b page | g clear filters")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTasks(view *gocui.View) {
	view.Clear()
	if !u.loaded {
		fmt.Fprint(view, "Log in to see your tasks")
		return
	}

	rows := u.list.Rows()
	if len(rows) == 0 {
		fmt.Fprint(view, "No tasks match the current filters")
		return
	}
	for i, task := range rows {
		prefix := " "
		if i == u.selected {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task))
	}
	if u.focus == viewTasks {
		view.SetCursor(0, min(u.selected, len(rows)-1))
	}
}

func (u *UI) renderStats(view *gocui.View) {
	view.Clear()
	if !u.loaded {
		return
	}
	local := tasklist.ComputeStats(u.list.Tasks(), dashboard.Today(u.now()))
	fmt.Fprint(view, formatStats(u.stats, local))
}

func (u *UI) renderCategories(view *gocui.View) {
	view.Clear()
	counts := make(map[string]int)
	for _, task := range u.list.Tasks() {
		counts[task.Category.Name]++
	}
	for _, category := range u.categories {
		fmt.Fprintf(view, "%s %s (%d)\n", category.Color, category.Name, counts[category.Name])
	}
	if n := counts[format.Uncategorized]; n > 0 {
		fmt.Fprintf(view, "%s %s (%d)\n", format.UncategorizedColor, format.Uncategorized, n)
	}
}

func (u *UI) renderQuote(view *gocui.View) {
	view.Clear()
	quote := u.quote
	if quote.Quote == "" {
		quote = dashboard.DefaultQuote
	}
	fmt.Fprintf(view, "%q\n  - %s", quote.Quote, quote.Author)
}

func (u *UI) onListClick(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewTasks)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)
	u.selected = min(row, len(u.list.Rows())-1)
	u.clampSelection()
	return nil
}

func (u *UI) selectedTask() *model.TaskView {
	rows := u.list.Rows()
	if u.selected >= 0 && u.selected < len(rows) {
		task := rows[u.selected]
		return &task
	}
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected < len(u.list.Rows())-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) nextPage(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.list.NextPage()
	u.selected = 0
	return nil
}

func (u *UI) prevPage(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.list.PrevPage()
	u.selected = 0
	return nil
}

func (u *UI) cyclePriorityFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	filters := u.list.Filters()
	filters.Priority = cycleOption(priorityFilterOptions, filters.Priority, 1)
	u.setFilters(filters)
	return nil
}

func (u *UI) cycleStatusFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	filters := u.list.Filters()
	filters.Status = cycleOption(statusFilterOptions, filters.Status, 1)
	u.setFilters(filters)
	return nil
}

func (u *UI) cycleSort(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.list.NextSort()
	u.selected = 0
	return nil
}

func (u *UI) setFilters(filters model.TaskFilters) {
	u.list.SetFilters(filters)
	u.selected = 0
	u.status = ""
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) clearFilters(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.setFilters(model.TaskFilters{})
	return nil
}

func (u *UI) startSearch(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search titles"
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.list.Filters().Search)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	filters := u.list.Filters()
	filters.Search = strings.TrimSpace(view.Buffer())
	u.searchActive = false
	u.setFilters(filters)
	u.closeOverlay(gui, viewSearch)
	return nil
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	u.closeOverlay(gui, viewSearch)
	return nil
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeOverlay(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 18
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) closeOverlay(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) addTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.session.IsAuthenticated() {
		return nil
	}
	u.form = &formState{kind: formTask, fields: buildTaskFields(nil, u.categories)}
	return nil
}

func (u *UI) editTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id, err := parseTaskID(selected.ID)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.form = &formState{kind: formTask, taskID: id, fields: buildTaskFields(selected, u.categories)}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(len(u.form.fields)+3, max(8, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.kind.title(u.form.taskID)
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if !u.saveForm() {
		return nil
	}
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return u.loadTasks()
}

// saveForm sends the open form to the API. It reports whether the form can
// be closed.
func (u *UI) saveForm() bool {
	ctx := context.Background()

	switch u.form.kind {
	case formLogin:
		username, password := u.form.fields[fieldUsername].Value, u.form.fields[fieldPassword].Value
		if err := u.session.Login(ctx, strings.TrimSpace(username), password); err != nil {
			u.status = err.Error()
			return false
		}
	case formRegister:
		if err := u.session.Register(ctx, parseRegisterForm(u.form.fields)); err != nil {
			u.status = err.Error()
			return false
		}
	default:
		view, err := parseTaskForm(u.form.fields)
		if err != nil {
			u.status = err.Error()
			return false
		}
		if u.form.taskID == 0 {
			_, err = u.client.Tasks.Create(ctx, format.CreateInput(view, u.serverCategories))
		} else {
			_, err = u.client.Tasks.Update(ctx, u.form.taskID, format.UpdateInput(view, u.serverCategories))
		}
		if err != nil {
			u.handleErr(err)
			return false
		}
	}

	u.status = ""
	return true
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil && u.form.kind.auth() {
		return u.quit(gui, nil)
	}
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return nil
}

func (u *UI) switchAuthForm(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil || !u.form.kind.auth() {
		return nil
	}
	if u.form.kind == formLogin {
		u.form = newAuthForm(formRegister)
	} else {
		u.form = newAuthForm(formLogin)
	}
	u.renderForm(view)
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.display())
	}
	if u.form.kind.auth() {
		fmt.Fprint(view, "ctrl+r switch login/register | esc quit")
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label+": ")) + len([]rune(current.display())) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if len(field.Options) > 0 {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleOption(field.Options, field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleOption(field.Options, field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) toggleStatus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id, err := parseTaskID(selected.ID)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	if _, err := u.client.Tasks.ToggleStatus(context.Background(), id); err != nil {
		u.handleErr(err)
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) deleteTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id, err := parseTaskID(selected.ID)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	if err := u.client.Tasks.Delete(context.Background(), id); err != nil {
		u.handleErr(err)
		return nil
	}
	u.status = fmt.Sprintf("Deleted %q", selected.Title)
	return u.loadTasks()
}

func (u *UI) exportCSV(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	path, err := export.WriteFile(u.exportDir, u.list.Visible(), u.now())
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.log.WithField("path", path).Info("exported tasks")
	u.status = "Exported to " + path
	return nil
}

func (u *UI) logout(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.session.IsAuthenticated() {
		return nil
	}
	if err := u.session.Logout(context.Background()); err != nil {
		u.status = err.Error()
	} else {
		u.status = "Logged out"
	}
	u.list.SetFilters(model.TaskFilters{})
	return u.loadTasks()
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  j/k or arrows move selection | mouse click selects",
		"  n next page | b previous page",
		"",
		"Actions:",
		"  a add task | e or enter edit task | d delete task",
		"  x toggle done | E export filtered tasks to CSV",
		"  r reload | L logout",
		"",
		"Search/Filter/Sort:",
		"  / search titles | p cycle priority | f cycle status",
		"  o cycle sort (due date, priority, title, created) | g clear filters",
		"",
		"Forms:",
		"  tab/arrows move field | space/left/right cycle choices | enter save | esc cancel",
		"",
		"Other:",
		"  ? help | esc close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
