package handler

import (
    "context"
    "fmt"
    "net/http"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.temporal.io/sdk/client"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/process"
)

// WorkflowStarter starts workflow executions.  client.Client satisfies it.
type WorkflowStarter interface {
    ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// ProcessHandler starts reservation processes on the worker's task queue.
type ProcessHandler struct {
    Starter   WorkflowStarter
    TaskQueue string
}

// NewProcessHandler constructs a ProcessHandler.
func NewProcessHandler(starter WorkflowStarter, taskQueue string) *ProcessHandler {
    if starter == nil {
        panic("nil starter passed to NewProcessHandler")
    }
    return &ProcessHandler{Starter: starter, TaskQueue: taskQueue}
}

// Start handles POST /v1/processes.  The optional body field process_id
// names the process; a random id is used otherwise.  The process id is also
// the workflow id, so starting the same id twice is rejected by the engine.
func (h *ProcessHandler) Start(c echo.Context) error {
    var body struct {
        ProcessID string `json:"process_id"`
    }
    if c.Request().ContentLength != 0 {
        if err := c.Bind(&body); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
        }
    }
    id := strings.TrimSpace(body.ProcessID)
    if id == "" {
        id = uuid.NewString()
    }
    if len(id) > model.MaxProcessIDLen {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("process_id longer than %d bytes", model.MaxProcessIDLen)})
    }

    opts := client.StartWorkflowOptions{ID: id, TaskQueue: h.TaskQueue}
    run, err := h.Starter.ExecuteWorkflow(c.Request().Context(), opts, process.Name, process.Request{ProcessID: id})
    if err != nil {
        c.Logger().Errorf("start process %s: %v", id, err)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not start process"})
    }
    return c.JSON(http.StatusAccepted, echo.Map{"process_id": id, "run_id": run.GetRunID()})
}
