package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/app"
	"github.com/Joseda-hg/supertask/internal/dashboard"
	"github.com/Joseda-hg/supertask/internal/export"
	"github.com/Joseda-hg/supertask/internal/format"
	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/tasklist"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

type Server struct {
	session *app.Session
	client  *api.Client
	log     logrus.FieldLogger
	now     func() time.Time
}

type listState struct {
	Filters model.TaskFilters
	Sort    tasklist.SortKey
	Page    int
}

func NewServer(session *app.Session, logger logrus.FieldLogger) *Server {
	return &Server{
		session: session,
		client:  session.Client(),
		log:     logger,
		now:     time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/export.csv", s.exportHandler)
	mux.HandleFunc("/api/tasks", s.apiTasksHandler)
	mux.HandleFunc("/api/stats", s.apiStatsHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	state := stateFromRequest(r)
	result, err := s.load(r)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	view := buildView(result.Tasks, state)
	data := struct {
		State      listState
		Rows       []model.TaskView
		Total      int
		Page       int
		TotalPages int
		Stats      model.DashboardStats
		Local      model.TaskStats
		Quote      model.Quote
		SortKeys   []tasklist.SortKey
		Priorities []string
		Statuses   []string
		PrevURL    string
		NextURL    string
		ExportURL  string
	}{
		State:      state,
		Rows:       view.Rows(),
		Total:      len(view.Visible()),
		Page:       view.Page(),
		TotalPages: max(view.TotalPages(), 1),
		Stats:      result.Stats,
		Local:      tasklist.ComputeStats(result.Tasks, dashboard.Today(s.now())),
		Quote:      result.DisplayQuote(),
		SortKeys:   tasklist.SortKeys,
		Priorities: []string{model.PriorityHigh, model.PriorityMedium, model.PriorityLow},
		Statuses:   []string{model.StatusPending, model.StatusInProgress, model.StatusCompleted},
		ExportURL:  "/export.csv?" + state.query(0),
	}
	if view.Page() > 1 {
		data.PrevURL = "/?" + state.query(view.Page()-1)
	}
	if view.Page() < view.TotalPages() {
		data.NextURL = "/?" + state.query(view.Page()+1)
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	state := stateFromRequest(r)
	result, err := s.load(r)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	content, err := export.CSV(buildView(result.Tasks, state).Visible())
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(s.now())))
	_, _ = w.Write([]byte(content))
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	state := stateFromRequest(r)
	result, err := s.load(r)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	view := buildView(result.Tasks, state)
	payload := struct {
		Tasks      []model.TaskView `json:"tasks"`
		Total      int              `json:"total"`
		Page       int              `json:"page"`
		TotalPages int              `json:"total_pages"`
	}{Tasks: view.Rows(), Total: len(view.Visible()), Page: view.Page(), TotalPages: view.TotalPages()}
	if payload.Tasks == nil {
		payload.Tasks = []model.TaskView{}
	}

	writeJSON(w, payload)
}

func (s *Server) apiStatsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.load(r)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	payload := struct {
		Local     model.TaskStats      `json:"local"`
		Dashboard model.DashboardStats `json:"dashboard"`
		Quote     model.Quote          `json:"quote"`
	}{
		Local:     tasklist.ComputeStats(result.Tasks, dashboard.Today(s.now())),
		Dashboard: result.Stats,
		Quote:     result.DisplayQuote(),
	}
	writeJSON(w, payload)
}

// load runs the joined dashboard fetch for this request. Category colours
// come from the defaults merged with the user's categories.
func (s *Server) load(r *http.Request) (dashboard.Result, error) {
	if !s.client.Auth.IsAuthenticated() {
		return dashboard.Result{}, api.ErrSessionExpired
	}

	ctx := r.Context()
	categories := format.DefaultCategories()
	page, err := s.client.Categories.List(ctx, api.CategoryListOptions{})
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return dashboard.Result{}, err
		}
		s.log.WithError(err).Warn("load categories")
	} else {
		categories = format.MergeCategories(categories, page.Results)
	}

	loader := dashboard.NewLoader(s.client.Tasks, s.client.Dashboard, categories)
	loader.SetClock(s.now)
	return loader.Load(ctx, api.TaskListOptions{})
}

func buildView(tasks []model.TaskView, state listState) *tasklist.View {
	view := tasklist.NewView(tasklist.PageSize)
	view.SetTasks(tasks)
	view.SetFilters(state.Filters)
	view.SetSort(state.Sort)
	view.SetPage(state.Page)
	return view
}

func stateFromRequest(r *http.Request) listState {
	query := r.URL.Query()
	state := listState{
		Filters: model.TaskFilters{
			Search:   strings.TrimSpace(query.Get("q")),
			Priority: strings.TrimSpace(query.Get("priority")),
			Status:   strings.TrimSpace(query.Get("status")),
		},
		Sort: tasklist.SortDueDate,
		Page: 1,
	}
	if key, ok := tasklist.ParseSortKey(strings.TrimSpace(query.Get("sort"))); ok {
		state.Sort = key
	}
	if value := strings.TrimSpace(query.Get("page")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			state.Page = parsed
		}
	}
	return state
}

// query encodes the state back into URL parameters. page 0 leaves the page out.
func (s listState) query(page int) string {
	values := make([]string, 0, 5)
	add := func(key, value string) {
		if value != "" {
			values = append(values, key+"="+template.URLQueryEscaper(value))
		}
	}
	add("q", s.Filters.Search)
	add("priority", s.Filters.Priority)
	add("status", s.Filters.Status)
	add("sort", string(s.Sort))
	if page > 0 {
		add("page", strconv.Itoa(page))
	}
	return strings.Join(values, "&")
}

func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		s.session.Expire()
		status = http.StatusUnauthorized
		err = fmt.Errorf("not logged in: run `supertask login` first")
	case api.IsStatus(err, http.StatusNotFound):
		status = http.StatusNotFound
	}
	s.log.WithError(err).WithField("status", status).Warn("web request failed")
	writeError(w, status, err)
}

func writeJSON(w http.ResponseWriter, payload any) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
