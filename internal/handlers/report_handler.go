package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/services"
)

type ReportHandler struct {
	service services.ReportService
	logger  *slog.Logger
}

func NewReportHandler(service services.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

// @Summary      Project report
// @Tags         Reports
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  models.ProjectReport
// @Router       /projects/{id}/report [get]
func (h *ReportHandler) ProjectReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	report, err := h.service.ProjectReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "[report][json]", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary      Project report as PDF
// @Tags         Reports
// @Produce      application/pdf
// @Param        id   path  int  true  "Project ID"
// @Success      200
// @Router       /projects/{id}/report.pdf [get]
func (h *ReportHandler) ProjectReportPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// rendered into memory so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.service.WriteProjectPDF(c.Request.Context(), id, &buf); err != nil {
		respondError(c, h.logger, "[report][pdf]", err)
		return
	}
	h.logger.Info("[report][pdf][ok]", "project_id", id, "bytes", buf.Len())
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="project_%d_report.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
