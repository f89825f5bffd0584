package handler

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/mock"
    "github.com/stretchr/testify/require"
    "go.temporal.io/sdk/client"
    "go.temporal.io/sdk/mocks"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/process"
    "github.com/iliyamo/bus-seat-reservation/internal/tasks"
)

type resumed struct {
    tokens [][]byte
}

func (r *resumed) CompleteActivity(_ context.Context, token []byte, _ interface{}, _ error) error {
    r.tokens = append(r.tokens, token)
    return nil
}

func seed(t *testing.T, store *tasks.MemoryStore, id, processID, code string) {
    t.Helper()
    require.NoError(t, store.Create(context.Background(), model.Task{
        ID:             id,
        ProcessID:      processID,
        DefinitionCode: code,
        State:          model.TaskStateReady,
        ElementValues:  map[string]string{"seats": "5"},
        ActivityToken:  []byte("token-" + id),
        CreatedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
    }))
}

func newTaskServer(t *testing.T) (*echo.Echo, *tasks.MemoryStore, *resumed) {
    store := tasks.NewMemoryStore()
    r := &resumed{}
    h := NewTaskHandler(tasks.NewService(store, r, nil, nil))
    e := echo.New()
    e.GET("/v1/tasks", h.List)
    e.GET("/v1/tasks/:id", h.Get)
    e.POST("/v1/tasks/:id/complete", h.Complete)
    return e, store, r
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestHealth(t *testing.T) {
    e := echo.New()
    e.GET("/healthz", Health)
    rec := serve(e, http.MethodGet, "/healthz", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "ok", rec.Body.String())
}

func TestListDefaultsToReady(t *testing.T) {
    e, store, _ := newTaskServer(t)
    seed(t, store, "t1", "p1", tasks.CodeReservationForm)
    seed(t, store, "t2", "p2", tasks.CodeNoSeatsAvailable)
    _, err := store.Complete(context.Background(), "t2", nil, time.Now())
    require.NoError(t, err)

    rec := serve(e, http.MethodGet, "/v1/tasks", "")
    require.Equal(t, http.StatusOK, rec.Code)
    var out struct {
        Tasks []model.Task `json:"tasks"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    require.Len(t, out.Tasks, 1)
    assert.Equal(t, "t1", out.Tasks[0].ID)
    assert.NotContains(t, rec.Body.String(), "token-t1")

    rec = serve(e, http.MethodGet, "/v1/tasks?state=all&process_id=p2", "")
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    require.Len(t, out.Tasks, 1)
    assert.Equal(t, model.TaskStateCompleted, out.Tasks[0].State)

    assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/v1/tasks?state=bogus", "").Code)
}

func TestGetTask(t *testing.T) {
    e, store, _ := newTaskServer(t)
    seed(t, store, "t1", "p1", tasks.CodeReservationForm)

    rec := serve(e, http.MethodGet, "/v1/tasks/t1", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"seats":"5"`)

    assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/v1/tasks/missing", "").Code)
}

func TestCompleteTask(t *testing.T) {
    e, store, r := newTaskServer(t)
    seed(t, store, "t1", "p1", tasks.CodeReservationForm)

    body := `{"element_values":{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com"}}`
    rec := serve(e, http.MethodPost, "/v1/tasks/t1/complete", body)
    require.Equal(t, http.StatusNoContent, rec.Code)
    require.Len(t, r.tokens, 1)
    assert.Equal(t, []byte("token-t1"), r.tokens[0])

    got, err := store.Get(context.Background(), "t1")
    require.NoError(t, err)
    assert.Equal(t, model.TaskStateCompleted, got.State)
    assert.Equal(t, "Ana", got.Value("firstName"))
    assert.Equal(t, "5", got.Value("seats"))

    assert.Equal(t, http.StatusConflict, serve(e, http.MethodPost, "/v1/tasks/t1/complete", body).Code)
    assert.Equal(t, http.StatusNotFound, serve(e, http.MethodPost, "/v1/tasks/nope/complete", body).Code)
    assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodPost, "/v1/tasks/t1/complete", "{").Code)
    assert.Len(t, r.tokens, 1)
}

func TestStartProcess(t *testing.T) {
    c := &mocks.Client{}
    run := &mocks.WorkflowRun{}
    run.On("GetRunID").Return("run-1")
    c.On("ExecuteWorkflow", mock.Anything,
        client.StartWorkflowOptions{ID: "p-42", TaskQueue: "bus-seats"},
        process.Name, process.Request{ProcessID: "p-42"},
    ).Return(run, nil).Once()

    e := echo.New()
    e.POST("/v1/processes", NewProcessHandler(c, "bus-seats").Start)

    rec := serve(e, http.MethodPost, "/v1/processes", `{"process_id":"p-42"}`)
    require.Equal(t, http.StatusAccepted, rec.Code)
    assert.JSONEq(t, `{"process_id":"p-42","run_id":"run-1"}`, rec.Body.String())
    c.AssertExpectations(t)
}

func TestStartProcessGeneratesID(t *testing.T) {
    c := &mocks.Client{}
    run := &mocks.WorkflowRun{}
    var started string
    c.On("ExecuteWorkflow", mock.Anything, mock.Anything, process.Name, mock.Anything).
        Run(func(args mock.Arguments) {
            started = args.Get(1).(client.StartWorkflowOptions).ID
        }).
        Return(run, nil)
    run.On("GetRunID").Return("run-2")

    e := echo.New()
    e.POST("/v1/processes", NewProcessHandler(c, "q").Start)
    rec := serve(e, http.MethodPost, "/v1/processes", "")
    require.Equal(t, http.StatusAccepted, rec.Code)
    assert.NotEmpty(t, started)
    assert.Contains(t, rec.Body.String(), started)
}

func TestStartProcessEngineError(t *testing.T) {
    c := &mocks.Client{}
    c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
        Return(nil, errors.New("unavailable"))

    e := echo.New()
    e.POST("/v1/processes", NewProcessHandler(c, "q").Start)
    assert.Equal(t, http.StatusBadGateway, serve(e, http.MethodPost, "/v1/processes", `{}`).Code)
}

func TestStartProcessRejectsOverlongID(t *testing.T) {
    c := &mocks.Client{}
    e := echo.New()
    e.POST("/v1/processes", NewProcessHandler(c, "q").Start)

    long := strings.Repeat("x", model.MaxProcessIDLen+1)
    rec := serve(e, http.MethodPost, "/v1/processes", `{"process_id":"`+long+`"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    c.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

    // a 45-character business id fits
    run := &mocks.WorkflowRun{}
    run.On("GetRunID").Return("run-3")
    c.On("ExecuteWorkflow", mock.Anything, mock.Anything, process.Name, mock.Anything).Return(run, nil).Once()
    rec = serve(e, http.MethodPost, "/v1/processes", `{"process_id":"reservation-for-customer-ana-lopez-2026-10-17"}`)
    assert.Equal(t, http.StatusAccepted, rec.Code)
}
