package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/middleware"
    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
    "github.com/iliyamo/bus-seat-reservation/internal/tasks"
)

// TaskHandler exposes human tasks to operators and customers.  Routes are
// registered behind JWTAuth and RequireRole.
type TaskHandler struct {
    Service *tasks.Service
}

// NewTaskHandler constructs a TaskHandler.  svc must be non-nil.
func NewTaskHandler(svc *tasks.Service) *TaskHandler {
    if svc == nil {
        panic("nil service passed to NewTaskHandler")
    }
    return &TaskHandler{Service: svc}
}

// List handles GET /v1/tasks.  Optional query parameters process_id and
// state filter the result; state defaults to READY and "ALL" disables the
// state filter.
func (h *TaskHandler) List(c echo.Context) error {
    state := strings.ToUpper(strings.TrimSpace(c.QueryParam("state")))
    switch state {
    case "":
        state = model.TaskStateReady
    case "ALL":
        state = ""
    case model.TaskStateReady, model.TaskStateCompleted:
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
    }
    f := repository.TaskFilter{ProcessID: c.QueryParam("process_id"), State: state}
    list, err := h.Service.List(c.Request().Context(), f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if list == nil {
        list = []model.Task{}
    }
    return c.JSON(http.StatusOK, echo.Map{"tasks": list})
}

// Get handles GET /v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
    t, err := h.Service.Get(c.Request().Context(), c.Param("id"))
    if err != nil {
        return taskError(c, err)
    }
    return c.JSON(http.StatusOK, t)
}

// Complete handles POST /v1/tasks/:id/complete.  The body carries the
// element values filled in by the caller; they are merged into the task
// before the waiting process resumes.
func (h *TaskHandler) Complete(c echo.Context) error {
    var body struct {
        ElementValues map[string]string `json:"element_values"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    t, err := h.Service.Complete(c.Request().Context(), c.Param("id"), body.ElementValues)
    if err != nil {
        return taskError(c, err)
    }
    c.Logger().Infof("task %s completed by %s", t.ID, middleware.UserID(c))
    return c.NoContent(http.StatusNoContent)
}

func taskError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrTaskNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "task already completed"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
