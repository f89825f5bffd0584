package router

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.temporal.io/sdk/mocks"

    "github.com/iliyamo/bus-seat-reservation/internal/handler"
    "github.com/iliyamo/bus-seat-reservation/internal/tasks"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

func TestRoutesRequireToken(t *testing.T) {
    e := echo.New()
    RegisterRoutes(e)
    th := handler.NewTaskHandler(tasks.NewService(tasks.NewMemoryStore(), &mocks.Client{}, nil, nil))
    ph := handler.NewProcessHandler(&mocks.Client{}, "q")
    limited := 0
    limiter := func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error { limited++; return next(c) }
    }
    RegisterTasks(e, th, ph, "secret", limiter)

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tasks", nil))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Zero(t, limited)

    tok, err := utils.NewAccessToken("secret", "cust-1", utils.RoleCustomer, 5)
    require.NoError(t, err)
    req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
    req.Header.Set("Authorization", "Bearer "+tok.Token)
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
    assert.Equal(t, 1, limited)
}
