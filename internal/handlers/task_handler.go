package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/authz"
	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	clock   clock.Clock
	logger  *slog.Logger
}

func NewTaskHandler(service services.TaskService, clk clock.Clock, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: service, clock: clk, logger: logger}
}

func parseStatus(raw string) (models.TaskStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	st, ok := models.ParseTaskStatus(raw)
	if !ok {
		return "", errs.Invalid("unknown task status %q", raw)
	}
	return st, nil
}

func (h *TaskHandler) taskFromRequest(req TaskRequest) (*models.Task, error) {
	due, err := parseTime(req.DueAt)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return &models.Task{
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Name:        req.Name,
		Description: req.Description,
		DueAt:       due,
		Status:      status,
	}, nil
}

// @Summary      Create task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      TaskRequest  true  "Task"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("[task][create][bind][err]", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	task, err := h.taskFromRequest(req)
	if err != nil {
		respondError(c, h.logger, "[task][create]", err)
		return
	}
	task.CreatorID = userID
	if task.AssigneeID == 0 {
		task.AssigneeID = userID
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		respondError(c, h.logger, "[task][create]", err)
		return
	}
	h.logger.Info("[task][create][ok]", "task_id", created.ID, "assignee_id", created.AssigneeID, "by", userID)
	resp, err := toTaskResponse(created, h.clock.Now())
	if err != nil {
		respondError(c, h.logger, "[task][create]", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "[task][get]", err)
		return
	}
	resp, err := toTaskResponse(task, h.clock.Now())
	if err != nil {
		respondError(c, h.logger, "[task][get]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      List tasks
// @Description  Filters: assignee_id, project_id, status, mine=true
// @Tags         Tasks
// @Produce      json
// @Success      200  {array}   TaskResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var filter models.TaskFilter
	var err error
	if filter.AssigneeID, err = queryInt64(c, "assignee_id"); err != nil {
		respondError(c, h.logger, "[task][list]", err)
		return
	}
	if filter.ProjectID, err = queryInt64(c, "project_id"); err != nil {
		respondError(c, h.logger, "[task][list]", err)
		return
	}
	if c.Query("mine") == "true" {
		filter.AssigneeID = &userID
	}
	if raw := c.Query("status"); raw != "" {
		st, err := parseStatus(raw)
		if err != nil {
			respondError(c, h.logger, "[task][list]", err)
			return
		}
		filter.Status = &st
	}

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "[task][list]", err)
		return
	}
	resp, err := toTaskResponses(tasks, h.clock.Now())
	if err != nil {
		respondError(c, h.logger, "[task][list]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// loadManaged fetches the task and checks the caller may change it.
func (h *TaskHandler) loadManaged(c *gin.Context, tag string) (*models.Task, bool) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, tag, err)
		return nil, false
	}
	if !authz.CanManageTask(userID, roleID, task) {
		forbidden(c, h.logger, tag, userID)
		return nil, false
	}
	return task, true
}

// @Summary      Update task
// @Description  A status change notifies the assignee after the task is saved.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Task ID"
// @Param        task  body      TaskRequest  true  "Task"
// @Success      200   {object}  TaskResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	existing, ok := h.loadManaged(c, "[task][update]")
	if !ok {
		return
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	data, err := h.taskFromRequest(req)
	if err != nil {
		respondError(c, h.logger, "[task][update]", err)
		return
	}
	if data.AssigneeID == 0 {
		data.AssigneeID = existing.AssigneeID
	}

	updated, err := h.service.Update(c.Request.Context(), existing.ID, data)
	if err != nil {
		respondError(c, h.logger, "[task][update]", err)
		return
	}
	h.logger.Info("[task][update][ok]", "task_id", updated.ID)
	resp, err := toTaskResponse(updated, h.clock.Now())
	if err != nil {
		respondError(c, h.logger, "[task][update]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Change task status
// @Description  Persists the status (and an optional comment), then notifies the assignee.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id      path      int            true  "Task ID"
// @Param        status  body      StatusRequest  true  "New status"
// @Success      200     {object}  TaskResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	existing, ok := h.loadManaged(c, "[task][status]")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	to, ok := models.ParseTaskStatus(req.Status)
	if !ok {
		h.logger.Info("[task][status][400] unknown status", "status", req.Status)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown task status"})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), existing.ID, to, req.Comment)
	if err != nil {
		respondError(c, h.logger, "[task][status]", err)
		return
	}
	h.logger.Info("[task][status][ok]", "task_id", updated.ID, "from", existing.Status, "to", updated.Status)
	resp, err := toTaskResponse(updated, h.clock.Now())
	if err != nil {
		respondError(c, h.logger, "[task][status]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Delete task
// @Tags         Tasks
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	existing, ok := h.loadManaged(c, "[task][delete]")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), existing.ID); err != nil {
		respondError(c, h.logger, "[task][delete]", err)
		return
	}
	h.logger.Info("[task][delete][ok]", "task_id", existing.ID)
	c.Status(http.StatusNoContent)
}
