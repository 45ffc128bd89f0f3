package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/app"
	"github.com/Joseda-hg/supertask/internal/logging"
	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/session"
)

func fakeAPI(tasks []model.Task) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.AuthResponse{User: model.User{Username: "ana"}, Access: "A", Refresh: "R"})
	})
	mux.HandleFunc("/categories/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Page[model.Category]{Results: []model.Category{{ID: 7, Name: "Garden", Color: "#22c55e"}}})
	})
	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Page[model.Task]{Count: len(tasks), Results: tasks})
	})
	mux.HandleFunc("/dashboard/stats/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.DashboardStats{TotalTasks: len(tasks)})
	})
	mux.HandleFunc("/dashboard/quote/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Quote{})
	})
	return mux
}

func sampleTasks() []model.Task {
	garden := "Garden"
	tasks := make([]model.Task, 0, 7)
	for i := 1; i <= 7; i++ {
		priority := model.WirePriorityLow
		if i%2 == 0 {
			priority = model.WirePriorityHigh
		}
		task := model.Task{
			ID:        int64(i),
			Title:     fmt.Sprintf("Task %d", i),
			Priority:  priority,
			Status:    model.WireStatusPending,
			CreatedAt: fmt.Sprintf("2024-05-0%dT10:00:00Z", i),
		}
		if i == 1 {
			task.Title = `He said "hi"`
			task.CategoryName = &garden
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func newTestServer(t *testing.T, loggedIn bool) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(fakeAPI(sampleTasks()))
	t.Cleanup(upstream.Close)

	client := api.New(upstream.URL, session.NewTokenStore(session.NewMemoryStorage()))
	sess := app.NewSession(client, logging.Discard())
	if loggedIn {
		if err := sess.Login(context.Background(), "ana", "pw"); err != nil {
			t.Fatalf("login: %v", err)
		}
	}

	server := NewServer(sess, logging.Discard())
	server.now = func() time.Time { return time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC) }
	return server.Handler()
}

func get(t *testing.T, handler http.Handler, target string) *http.Response {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder.Result()
}

func TestAPITasksFiltersAndPages(t *testing.T) {
	handler := newTestServer(t, true)

	resp := get(t, handler, "/api/tasks?priority=High&sort=createdAt")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload struct {
		Tasks      []model.TaskView `json:"tasks"`
		Total      int              `json:"total"`
		Page       int              `json:"page"`
		TotalPages int              `json:"total_pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 3 || len(payload.Tasks) != 3 {
		t.Fatalf("expected 3 high priority tasks, got %+v", payload)
	}
	if payload.Tasks[0].ID != "6" {
		t.Fatalf("expected newest first, got %s", payload.Tasks[0].ID)
	}

	resp = get(t, handler, "/api/tasks?page=2")
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Page != 2 || payload.TotalPages != 2 || len(payload.Tasks) != 2 {
		t.Fatalf("unexpected second page %+v", payload)
	}
}

func TestExportCSV(t *testing.T) {
	handler := newTestServer(t, true)

	resp := get(t, handler, "/export.csv?q=said")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="tasks_2024-05-10.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	want := "Title,Description,Due Date,Category,Priority,Status,Created At\n" +
		`"He said ""hi""","","","Garden","Low","Pending","2024-05-01"`
	if string(body) != want {
		t.Fatalf("unexpected csv:\n%s", body)
	}

	resp = get(t, handler, "/export.csv?q=nothing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for empty export, got %d", resp.StatusCode)
	}
}

func TestIndexRendersTasks(t *testing.T) {
	handler := newTestServer(t, true)

	resp := get(t, handler, "/?sort=title")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, want := range []string{"He said &#34;hi&#34;", "Robert Collier", "page 1 of 2", "#22c55e"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestAPIStats(t *testing.T) {
	handler := newTestServer(t, true)

	resp := get(t, handler, "/api/stats")
	var payload struct {
		Local     model.TaskStats      `json:"local"`
		Dashboard model.DashboardStats `json:"dashboard"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Local.Total != 7 || payload.Local.HighPriority != 3 || payload.Dashboard.TotalTasks != 7 {
		t.Fatalf("unexpected stats %+v", payload)
	}
}

func TestRequiresLogin(t *testing.T) {
	handler := newTestServer(t, false)

	for _, target := range []string{"/", "/api/tasks", "/export.csv"} {
		resp := get(t, handler, target)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, resp.StatusCode)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	handler := newTestServer(t, true)
	if resp := get(t, handler, "/nope"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestExportCSVIncludesEveryPage(t *testing.T) {
	handler := newTestServer(t, true)

	resp := get(t, handler, "/export.csv?sort=createdAt&page=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(string(body), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header and 7 rows, got %d lines:\n%s", len(lines), body)
	}
	if !strings.HasPrefix(lines[1], `"Task 7",`) {
		t.Fatalf("expected newest task first, got %s", lines[1])
	}
	if !strings.HasPrefix(lines[7], `"He said ""hi""",`) {
		t.Fatalf("expected oldest task last, got %s", lines[7])
	}
}
