package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type CostHandler struct {
	service services.CostService
	logger  *slog.Logger
}

func NewCostHandler(service services.CostService, logger *slog.Logger) *CostHandler {
	return &CostHandler{service: service, logger: logger}
}

// @Summary      Record a cost
// @Description  reference_kind PROJECT|TASK, cost_type DELAY|ADVANCE|PLANNED_EXPENSE, amount > 0
// @Tags         Costs
// @Accept       json
// @Produce      json
// @Param        cost  body      CostRequest  true  "Cost"
// @Success      201   {object}  models.Cost
// @Failure      400   {object}  ErrorResponse
// @Router       /costs [post]
func (h *CostHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req CostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	cost, err := h.service.Record(c.Request.Context(), &models.Cost{
		ReferenceKind: models.ReferenceKind(req.ReferenceKind),
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Amount:        req.Amount,
		CostType:      models.CostType(req.CostType),
		RecordedBy:    userID,
	})
	if err != nil {
		respondError(c, h.logger, "[cost][create]", err)
		return
	}
	h.logger.Info("[cost][create][ok]", "cost_id", cost.ID, "kind", cost.ReferenceKind, "ref", cost.ReferenceID)
	c.JSON(http.StatusCreated, cost)
}

func referenceFromQuery(c *gin.Context) (models.ReferenceKind, int64, error) {
	kind := models.ReferenceKind(strings.ToUpper(c.Query("reference_kind")))
	if !kind.Valid() {
		return "", 0, errs.Invalid("reference_kind must be PROJECT or TASK")
	}
	id, err := queryInt64(c, "reference_id")
	if err != nil {
		return "", 0, err
	}
	if id == nil {
		return "", 0, errs.Invalid("reference_id is required")
	}
	return kind, *id, nil
}

// @Summary      List costs of a project or task
// @Tags         Costs
// @Produce      json
// @Param        reference_kind  query  string  true  "PROJECT or TASK"
// @Param        reference_id    query  int     true  "Reference ID"
// @Success      200  {array}  models.Cost
// @Router       /costs [get]
func (h *CostHandler) List(c *gin.Context) {
	kind, refID, err := referenceFromQuery(c)
	if err != nil {
		respondError(c, h.logger, "[cost][list]", err)
		return
	}
	costs, err := h.service.List(c.Request.Context(), kind, refID)
	if err != nil {
		respondError(c, h.logger, "[cost][list]", err)
		return
	}
	if costs == nil {
		costs = []models.Cost{}
	}
	c.JSON(http.StatusOK, costs)
}

func (h *CostHandler) Mine(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	costs, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "[cost][mine]", err)
		return
	}
	if costs == nil {
		costs = []models.Cost{}
	}
	c.JSON(http.StatusOK, costs)
}

// @Summary      Cost totals and balance
// @Tags         Costs
// @Produce      json
// @Param        reference_kind  query  string  true  "PROJECT or TASK"
// @Param        reference_id    query  int     true  "Reference ID"
// @Success      200  {object}  models.CostSummary
// @Router       /costs/summary [get]
func (h *CostHandler) Summary(c *gin.Context) {
	kind, refID, err := referenceFromQuery(c)
	if err != nil {
		respondError(c, h.logger, "[cost][summary]", err)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), kind, refID)
	if err != nil {
		respondError(c, h.logger, "[cost][summary]", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
