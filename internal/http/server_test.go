package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myy/internal/core"
	"myy/internal/kv"
	"myy/internal/kv/memory"
	"myy/internal/services"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)

type failingPutMany struct {
	*memory.Store
	fail bool
}

func (s *failingPutMany) PutMany(ctx context.Context, writes []kv.Write) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.PutMany(ctx, writes)
}

func newTestServer(t *testing.T, store kv.Store) *Server {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	tr, err := services.Open(context.Background(), store, services.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	s := NewServer(Config{Addr: ":0", RateLimitPerMinute: 600, RateLimitBurst: 500}, tr)
	s.now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, s, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.ready = func(context.Context) error { return errors.New("db down") }
	rec = do(t, s, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/categories?type=income", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[categoriesResponse](t, rec)
	assert.Equal(t, core.Income, got.Type)
	assert.Equal(t, "Salary", got.Default)

	rec = do(t, s, http.MethodGet, "/api/categories?type=gift", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateAndListEntries(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"number amount", `{"type":"expense","amount":12.5,"category":"Food","date":"2024-03-02"}`, http.StatusCreated},
		{"comma amount", `{"type":"income","amount":"1000,00","date":"2024-02-01"}`, http.StatusCreated},
		{"default date", `{"type":"expense","amount":"3"}`, http.StatusCreated},
		{"zero amount", `{"type":"expense","amount":0}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"type":"expense","amount":"-4"}`, http.StatusUnprocessableEntity},
		{"amount out of range", `{"type":"expense","amount":184467440737095516.17}`, http.StatusUnprocessableEntity},
		{"bad type", `{"type":"loan","amount":1}`, http.StatusUnprocessableEntity},
		{"bad date", `{"type":"expense","amount":1,"date":"yesterday"}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"type":"expense","amount":1,"currency":"EUR"}`, http.StatusBadRequest},
		{"not json", `amount=1`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/entries", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	all := decode[entriesResponse](t, do(t, s, http.MethodGet, "/api/entries", ""))
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "Food", all.Entries[0].Category, "expense default category")

	march := decode[entriesResponse](t, do(t, s, http.MethodGet, "/api/entries?month=2024-03", ""))
	assert.Equal(t, "2024-03", march.Month)
	assert.Equal(t, 2, march.Count)

	rec := do(t, s, http.MethodGet, "/api/entries?month=March", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/entries", `{"type":"income","amount":1000,"category":"Salary","date":"2024-03-01"}`)
	do(t, s, http.MethodPost, "/api/entries", `{"type":"expense","amount":250,"category":"Bills","date":"2024-03-05"}`)

	rec := do(t, s, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2024-03", got["month"])
	totals := got["totals"].(map[string]any)
	assert.Equal(t, 750.0, totals["net"])
	assert.Equal(t, 250.0, totals["sumExpense"])
}

func TestDeleteAndRestoreEntry(t *testing.T) {
	s := newTestServer(t, nil)
	created := decode[core.Entry](t, do(t, s, http.MethodPost, "/api/entries", `{"type":"expense","amount":5,"date":"2024-03-03"}`))

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/entries/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/entries/"+created.ID, "").Code)

	trash := decode[trashResponse](t, do(t, s, http.MethodGet, "/api/trash", ""))
	require.Len(t, trash.Expenses, 1)
	assert.True(t, testNow.Equal(trash.Expenses[0].DeletedAt))

	rec := do(t, s, http.MethodPost, "/api/trash/expense/"+created.ID+"/restore", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/trash/expense/"+created.ID+"/restore", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/api/trash/bogus/x/restore", "").Code)

	all := decode[entriesResponse](t, do(t, s, http.MethodGet, "/api/entries", ""))
	assert.Equal(t, 1, all.Count)
}

func TestRestoreFailureIsServiceUnavailable(t *testing.T) {
	store := &failingPutMany{Store: memory.New()}
	s := newTestServer(t, store)
	created := decode[core.Entry](t, do(t, s, http.MethodPost, "/api/entries", `{"type":"expense","amount":5}`))
	do(t, s, http.MethodDelete, "/api/entries/"+created.ID, "")

	store.fail = true
	rec := do(t, s, http.MethodPost, "/api/trash/expenses/"+created.ID+"/restore", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	trash := decode[trashResponse](t, do(t, s, http.MethodGet, "/api/trash", ""))
	assert.Equal(t, 1, trash.Count)
}

func TestBulkOperationsRequireConfirmation(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/entries", `{"type":"expense","amount":5,"date":"2024-03-03"}`)
	task := decode[taskView](t, do(t, s, http.MethodPost, "/api/tasks", `{"text":"file taxes"}`))
	do(t, s, http.MethodPost, "/api/tasks/"+task.ID+"/toggle", "")

	rec := do(t, s, http.MethodPost, "/api/entries/trash-month?month=2024-03", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorBody](t, rec)
	require.NotNil(t, body.Prompt)
	assert.Equal(t, services.PromptMoveMonth.Title, body.Prompt.Title)

	rec = do(t, s, http.MethodPost, "/api/entries/trash-month?month=2024-03&confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"month":"2024-03","moved":1}`, rec.Body.String())

	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/tasks/trash-completed", "").Code)
	rec = do(t, s, http.MethodPost, "/api/tasks/trash-completed?confirm=1", "")
	assert.JSONEq(t, `{"moved":1}`, rec.Body.String())

	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodDelete, "/api/trash", "").Code)
	rec = do(t, s, http.MethodDelete, "/api/trash?confirm=true", "")
	assert.JSONEq(t, `{"purged":2}`, rec.Body.String())
}

func TestTasksEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/api/tasks", `{"text":"   "}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/api/tasks", `{"text":"x","due":"soon"}`).Code)

	late := decode[taskView](t, do(t, s, http.MethodPost, "/api/tasks", `{"text":"renew passport","due":"2024-03-01"}`))
	assert.True(t, late.Overdue)
	later := decode[taskView](t, do(t, s, http.MethodPost, "/api/tasks", `{"text":"book flights","due":"2024-04-01"}`))
	assert.False(t, later.Overdue)

	toggled := decode[taskView](t, do(t, s, http.MethodPost, "/api/tasks/"+late.ID+"/toggle", ""))
	assert.True(t, toggled.Done)
	assert.False(t, toggled.Overdue)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/tasks/nope/toggle", "").Code)

	list := decode[tasksResponse](t, do(t, s, http.MethodGet, "/api/tasks?status=pending", ""))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, later.ID, list.Tasks[0].ID)
	assert.Equal(t, 1, list.Pending)
	assert.Equal(t, 1, list.Completed)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodGet, "/api/tasks?status=archived", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/tasks/"+later.ID, "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/trash/task/"+later.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/trash/task/"+later.ID, "").Code)
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t, nil)

	assert.JSONEq(t, `{"darkMode":false}`, do(t, s, http.MethodGet, "/api/preferences", "").Body.String())
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPut, "/api/preferences", `{}`).Code)

	rec := do(t, s, http.MethodPut, "/api/preferences", `{"darkMode":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"darkMode":true}`, do(t, s, http.MethodGet, "/api/preferences", "").Body.String())
}

func TestRoutingErrors(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/nothing", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodPatch, "/api/entries", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/.env", "").Code)
}

func TestRateLimited(t *testing.T) {
	tr, err := services.Open(context.Background(), memory.New())
	require.NoError(t, err)
	s := NewServer(Config{RateLimitPerMinute: 1, RateLimitBurst: 1}, tr)
	defer s.Shutdown(context.Background())

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/preferences", "").Code)
	rec := do(t, s, http.MethodGet, "/api/preferences", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code, "health is not rate limited")
}
