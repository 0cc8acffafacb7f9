package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tasktracker/internal/authz"
	"tasktracker/internal/clock"
	"tasktracker/internal/config"
	"tasktracker/internal/errs"
	"tasktracker/internal/handlers"
	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/realtime"
	"tasktracker/internal/scheduler"
	servicesmock "tasktracker/internal/services/mocks"
)

var now = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser stands in for AuthMiddleware.
func asUser(userID int64, roleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetIdentity(c, userID, roleID)
		c.Next()
	}
}

func perform(r http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type TaskHandlerTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockService *servicesmock.MockTaskService
	handler     *handlers.TaskHandler
}

func (s *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockService = servicesmock.NewMockTaskService(s.mockCtrl)
	s.handler = handlers.NewTaskHandler(s.mockService, clock.NewManual(now), quietLogger())
}

func (s *TaskHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *TaskHandlerTestSuite) router(userID int64, roleID int) *gin.Engine {
	r := gin.New()
	r.Use(asUser(userID, roleID))
	r.POST("/tasks", s.handler.Create)
	r.GET("/tasks", s.handler.List)
	r.GET("/tasks/:id", s.handler.GetByID)
	r.PUT("/tasks/:id", s.handler.Update)
	r.PATCH("/tasks/:id/status", s.handler.UpdateStatus)
	r.DELETE("/tasks/:id", s.handler.Delete)
	return r
}

func TestTaskHandlerSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func (s *TaskHandlerTestSuite) TestCreate() {
	s.Run("success: defaults assignee to caller and reports hours remaining", func() {
		due := now.Add(5*time.Hour + 30*time.Minute)
		s.mockService.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, t *models.Task) (*models.Task, error) {
				s.Equal(int64(3), t.CreatorID)
				s.Equal(int64(3), t.AssigneeID)
				s.Equal(models.StatusInProgress, t.Status)
				s.True(due.Equal(*t.DueAt))
				t.ID = 9
				return t, nil
			})

		rec := perform(s.router(3, authz.RoleUser), http.MethodPost, "/tasks", map[string]any{
			"name":   "budget",
			"due_at": due.Format(time.RFC3339),
			"status": "en proceso",
		})
		s.Equal(http.StatusCreated, rec.Code)

		var got handlers.TaskResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal(int64(9), got.ID)
		s.Require().NotNil(got.HoursRemaining)
		s.Equal(int64(5), *got.HoursRemaining)
	})

	s.Run("error: 400 on bad due date and unknown status", func() {
		r := s.router(3, authz.RoleUser)
		s.Equal(http.StatusBadRequest, perform(r, http.MethodPost, "/tasks", map[string]any{"name": "x", "due_at": "tomorrow"}).Code)
		s.Equal(http.StatusBadRequest, perform(r, http.MethodPost, "/tasks", map[string]any{"name": "x", "status": "ARCHIVED"}).Code)
	})

	s.Run("error: 400 from service validation", func() {
		s.mockService.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errs.Invalid("task name is required"))
		rec := perform(s.router(3, authz.RoleUser), http.MethodPost, "/tasks", map[string]any{"name": ""})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *TaskHandlerTestSuite) TestUpdateStatus() {
	task := &models.Task{ID: 7, CreatorID: 1, AssigneeID: 3, Name: "budget", Status: models.StatusPending}

	s.Run("success: assignee moves the task forward", func() {
		s.mockService.EXPECT().GetByID(gomock.Any(), int64(7)).Return(task, nil)
		s.mockService.EXPECT().UpdateStatus(gomock.Any(), int64(7), models.StatusInProgress, "on it").
			Return(&models.Task{ID: 7, AssigneeID: 3, Name: "budget", Status: models.StatusInProgress, Comments: "on it"}, nil)

		rec := perform(s.router(3, authz.RoleUser), http.MethodPatch, "/tasks/7/status", map[string]any{"status": "In Progress", "comment": "on it"})
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"status":"IN_PROGRESS"`)
	})

	s.Run("error: unknown status is rejected before persisting", func() {
		s.mockService.EXPECT().GetByID(gomock.Any(), int64(7)).Return(task, nil)
		rec := perform(s.router(3, authz.RoleUser), http.MethodPatch, "/tasks/7/status", map[string]any{"status": "ARCHIVED"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 403 for unrelated users", func() {
		s.mockService.EXPECT().GetByID(gomock.Any(), int64(7)).Return(task, nil)
		rec := perform(s.router(99, authz.RoleUser), http.MethodPatch, "/tasks/7/status", map[string]any{"status": "COMPLETED"})
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("error: 404 for missing task", func() {
		s.mockService.EXPECT().GetByID(gomock.Any(), int64(8)).Return(nil, errs.NotFound("task", 8))
		rec := perform(s.router(1, authz.RoleAdmin), http.MethodPatch, "/tasks/8/status", map[string]any{"status": "COMPLETED"})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("error: 500 when persisting fails", func() {
		s.mockService.EXPECT().GetByID(gomock.Any(), int64(7)).Return(task, nil)
		s.mockService.EXPECT().UpdateStatus(gomock.Any(), int64(7), models.StatusCompleted, "").Return(nil, fmt.Errorf("db down"))
		rec := perform(s.router(1, authz.RoleAdmin), http.MethodPatch, "/tasks/7/status", map[string]any{"status": "COMPLETED"})
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}

func (s *TaskHandlerTestSuite) TestList() {
	s.Run("mine=true filters by caller", func() {
		s.mockService.EXPECT().GetAll(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, f models.TaskFilter) ([]models.Task, error) {
				s.Require().NotNil(f.AssigneeID)
				s.Equal(int64(3), *f.AssigneeID)
				s.Require().NotNil(f.Status)
				s.Equal(models.StatusPending, *f.Status)
				return []models.Task{{ID: 1, Name: "a", Status: models.StatusCompleted}}, nil
			})
		rec := perform(s.router(3, authz.RoleUser), http.MethodGet, "/tasks?mine=true&status=pendiente", nil)
		s.Equal(http.StatusOK, rec.Code)

		var got []handlers.TaskResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		want := []handlers.TaskResponse{{ID: 1, Name: "a", Status: models.StatusCompleted}}
		if diff := cmp.Diff(want, got); diff != "" {
			s.Failf("unexpected tasks", "(-want +got):\n%s", diff)
		}
	})

	s.Run("error: bad project_id", func() {
		rec := perform(s.router(3, authz.RoleUser), http.MethodGet, "/tasks?project_id=abc", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *TaskHandlerTestSuite) TestDelete() {
	s.mockService.EXPECT().GetByID(gomock.Any(), int64(7)).Return(&models.Task{ID: 7, CreatorID: 3}, nil)
	s.mockService.EXPECT().Delete(gomock.Any(), int64(7)).Return(nil)
	rec := perform(s.router(3, authz.RoleUser), http.MethodDelete, "/tasks/7", nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = perform(s.router(3, authz.RoleUser), http.MethodDelete, "/tasks/zero", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestCostHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := servicesmock.NewMockCostService(ctrl)
	h := handlers.NewCostHandler(svc, quietLogger())

	r := gin.New()
	r.Use(asUser(2, authz.RoleUser))
	r.POST("/costs", h.Create)
	r.GET("/costs/summary", h.Summary)

	svc.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, c *models.Cost) (*models.Cost, error) {
		assert.Equal(t, int64(2), c.RecordedBy)
		c.ID = 5
		return c, nil
	})
	rec := perform(r, http.MethodPost, "/costs", map[string]any{
		"reference_kind": "PROJECT", "reference_id": 1, "amount": 10.5, "cost_type": "DELAY",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	svc.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil, errs.Invalid("amount must be greater than zero"))
	rec = perform(r, http.MethodPost, "/costs", map[string]any{
		"reference_kind": "PROJECT", "reference_id": 1, "amount": 0, "cost_type": "DELAY",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/costs/summary?reference_kind=CLIENT&reference_id=1", nil).Code)

	svc.EXPECT().Summary(gomock.Any(), models.ReferenceTask, int64(4)).Return(&models.CostSummary{
		ReferenceKind: models.ReferenceTask, ReferenceID: 4, Balance: -20,
		Totals: map[models.CostType]float64{models.CostDelay: 20},
	}, nil)
	rec = perform(r, http.MethodGet, "/costs/summary?reference_kind=task&reference_id=4", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":-20`)
}

type stubRunner struct {
	report scheduler.Report
	scans  int
}

func (s *stubRunner) Scan(context.Context) scheduler.Report {
	s.scans++
	return s.report
}

func (s *stubRunner) Running() bool { return true }

func TestReminderHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runner := &stubRunner{report: scheduler.Report{Checked: 4, Eligible: 2, Sent: 2}}
	h := handlers.NewReminderHandler(runner, quietLogger())

	r := gin.New()
	r.Use(asUser(1, authz.RoleAdmin))
	r.POST("/reminders/run", h.Run)
	r.GET("/reminders/status", h.Status)

	rec := perform(r, http.MethodPost, "/reminders/run", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sent":2`)
	assert.Equal(t, 1, runner.scans)

	rec = perform(r, http.MethodGet, "/reminders/status", nil)
	assert.JSONEq(t, `{"running":true}`, rec.Body.String())
}

func TestNotificationStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	registry := realtime.NewRegistry()
	h := handlers.NewNotificationHandler(servicesmock.NewMockNotificationService(ctrl), registry, quietLogger())

	r := gin.New()
	r.Use(asUser(3, authz.RoleUser))
	r.GET("/notifications/stream", h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = fmt.Fprintf(conn, "GET /notifications/stream HTTP/1.1\r\nHost: test\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\nSec-WebSocket-Version: 13\r\n\r\n")
	require.NoError(t, err)

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", resp.Header.Get("Sec-WebSocket-Accept"))

	require.Eventually(t, func() bool { _, ok := registry.Get(3); return ok }, time.Second, 5*time.Millisecond)
	p, _ := registry.Get(3)
	require.NoError(t, p.Push("status of task 'budget' changed from 'PENDING' to 'IN_PROGRESS'"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	header := make([]byte, 2)
	_, err = io.ReadFull(br, header)
	require.NoError(t, err)
	assert.Equal(t, byte(0x81), header[0], "final text frame")
	n := int(header[1] & 0x7f)
	if n == 126 {
		ext := make([]byte, 2)
		_, err = io.ReadFull(br, ext)
		require.NoError(t, err)
		n = int(ext[0])<<8 | int(ext[1])
	}
	payload := make([]byte, n)
	_, err = io.ReadFull(br, payload)
	require.NoError(t, err)

	var ev realtime.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, "notification", ev.Type)
	assert.Contains(t, ev.Message, "IN_PROGRESS")

	// masked close frame from the client
	_, err = conn.Write([]byte{0x88, 0x80, 1, 2, 3, 4})
	require.NoError(t, err)
	require.Eventually(t, func() bool { _, ok := registry.Get(3); return !ok }, time.Second, 5*time.Millisecond)
}

func TestUserMeMappingFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := servicesmock.NewMockUserService(ctrl)
	h := handlers.NewUserHandler(svc, config.JWTConfig{Secret: "s", TTL: time.Hour}, clock.NewManual(now), quietLogger())

	r := gin.New()
	r.Use(asUser(3, authz.RoleUser))
	r.GET("/users/me", h.Me)

	svc.EXPECT().GetByID(gomock.Any(), int64(3)).Return(nil, nil)

	rec := perform(r, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
