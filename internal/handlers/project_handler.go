package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/authz"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
	logger  *slog.Logger
}

func NewProjectHandler(service services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

func projectFromRequest(req ProjectRequest) (*models.Project, error) {
	start, err := parseTime(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseTime(req.EndDate)
	if err != nil {
		return nil, err
	}
	return &models.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		OwnerID:     req.OwnerID,
		RiskLevel:   models.RiskLevel(req.RiskLevel),
		Budget:      req.Budget,
	}, nil
}

// @Summary      Create project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        project  body      ProjectRequest  true  "Project"
// @Success      201      {object}  models.Project
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	p, err := projectFromRequest(req)
	if err != nil {
		respondError(c, h.logger, "[project][create]", err)
		return
	}
	// only admins may create a project on someone else's behalf
	if p.OwnerID == 0 || !authz.IsAdmin(roleID) {
		p.OwnerID = userID
	}

	created, err := h.service.Create(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, "[project][create]", err)
		return
	}
	h.logger.Info("[project][create][ok]", "project_id", created.ID, "owner_id", created.OwnerID)
	c.JSON(http.StatusCreated, created)
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "[project][get]", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      List projects
// @Tags         Projects
// @Produce      json
// @Param        owner_id  query  int  false  "Owner"
// @Success      200  {array}  models.Project
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	ownerID, err := queryInt64(c, "owner_id")
	if err != nil {
		respondError(c, h.logger, "[project][list]", err)
		return
	}
	projects, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.logger, "[project][list]", err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) loadManaged(c *gin.Context, tag string) (*models.Project, bool) {
	userID, roleID := getUserAndRole(c)
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, tag, err)
		return nil, false
	}
	if !authz.CanManageProject(userID, roleID, p) {
		forbidden(c, h.logger, tag, userID)
		return nil, false
	}
	return p, true
}

func (h *ProjectHandler) Update(c *gin.Context) {
	existing, ok := h.loadManaged(c, "[project][update]")
	if !ok {
		return
	}
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	p, err := projectFromRequest(req)
	if err != nil {
		respondError(c, h.logger, "[project][update]", err)
		return
	}
	updated, err := h.service.Update(c.Request.Context(), existing.ID, p)
	if err != nil {
		respondError(c, h.logger, "[project][update]", err)
		return
	}
	h.logger.Info("[project][update][ok]", "project_id", updated.ID)
	c.JSON(http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	existing, ok := h.loadManaged(c, "[project][delete]")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), existing.ID); err != nil {
		respondError(c, h.logger, "[project][delete]", err)
		return
	}
	h.logger.Info("[project][delete][ok]", "project_id", existing.ID)
	c.Status(http.StatusNoContent)
}
