package handler

import (
	"bytes"
	"net/http"

	"frota/internal/dto"
	"frota/internal/infra"
	"frota/internal/report"
	"frota/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// Overview godoc
// @Summary Visão geral do dataset
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Success 200 {object} report.Overview
// @Failure 404 {object} apierror.APIError
// @Router /v1/datasets/{id}/overview [get]
func (h *ReportsHandler) Overview(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Overview(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vehicles godoc
// @Summary Frota filtrada por status e tipo
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param status query []string false "Status (repetível)"
// @Param tipo query []string false "Tipo (repetível)"
// @Success 200 {object} report.VehicleReport
// @Router /v1/datasets/{id}/vehicles [get]
func (h *ReportsHandler) Vehicles(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var q dto.VehiclesQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Vehicles(c.Request.Context(), id, report.VehicleFilter{Status: q.Status, Types: q.Tipo})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Usage godoc
// @Summary Utilização dos veículos
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param top query int false "Tamanho dos rankings (padrão 10)"
// @Success 200 {object} report.UsageReport
// @Router /v1/datasets/{id}/usage [get]
func (h *ReportsHandler) Usage(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var q dto.TopQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Usage(c.Request.Context(), id, q.Top)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Maintenance godoc
// @Summary Custos de manutenção
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param top query int false "Veículos no ranking de custo (padrão 10)"
// @Success 200 {object} report.MaintenanceReport
// @Router /v1/datasets/{id}/maintenances [get]
func (h *ReportsHandler) Maintenance(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var q dto.TopQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Maintenance(c.Request.Context(), id, q.Top)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MaintainedVehicles lists the vehicles that have maintenance rows.
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Success 200 {array} report.Count
// @Router /v1/datasets/{id}/maintenances/vehicles [get]
func (h *ReportsHandler) MaintainedVehicles(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	resp, err := h.svc.MaintainedVehicles(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VehicleMaintenance godoc
// @Summary Histórico de manutenção de um veículo
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param vehicle_id path string true "ID do veículo"
// @Success 200 {object} report.VehicleMaintenance
// @Failure 404 {object} apierror.APIError
// @Router /v1/datasets/{id}/maintenances/vehicles/{vehicle_id} [get]
func (h *ReportsHandler) VehicleMaintenance(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	resp, err := h.svc.VehicleMaintenance(c.Request.Context(), id, c.Param("vehicle_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Punches godoc
// @Summary Registros de ponto
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param top query int false "Usuários no ranking (padrão 10)"
// @Success 200 {object} report.PunchReport
// @Router /v1/datasets/{id}/punches [get]
func (h *ReportsHandler) Punches(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var q dto.TopQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Punches(c.Request.Context(), id, q.Top)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UserPunches godoc
// @Summary Pontos e horas de um usuário
// @Tags relatorios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param user path string true "Usuário (e-mail)"
// @Success 200 {object} report.UserPunches
// @Failure 404 {object} apierror.APIError
// @Router /v1/datasets/{id}/punches/users/{user} [get]
func (h *ReportsHandler) UserPunches(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	resp, err := h.svc.UserPunches(c.Request.Context(), id, c.Param("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Horas trabalhadas ─────────────────────────────────────────────────────────

func hoursFilter(c *gin.Context) (report.HoursFilter, bool) {
	var q dto.HoursQuery
	if !bindQuery(c, &q) {
		return report.HoursFilter{}, false
	}
	return report.HoursFilter{PeriodType: q.PeriodType, Users: q.User}, true
}

// Hours godoc
// @Summary Relatório de horas trabalhadas
// @Tags horas
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param period_type query string false "DAY, MONTH ou ALL (padrão)"
// @Param user query []string false "Usuários (repetível)"
// @Success 200 {object} report.HoursReport
// @Failure 409 {object} apierror.Unavailable
// @Router /v1/datasets/{id}/hours [get]
func (h *ReportsHandler) Hours(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	f, ok := hoursFilter(c)
	if !ok {
		return
	}
	resp, err := h.svc.Hours(c.Request.Context(), id, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HoursPDF godoc
// @Summary Relatório de horas trabalhadas em PDF
// @Tags horas
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param period_type query string false "DAY, MONTH ou ALL (padrão)"
// @Param user query []string false "Usuários (repetível)"
// @Success 200 {file} file
// @Failure 409 {object} apierror.Unavailable
// @Router /v1/datasets/{id}/hours/pdf [get]
func (h *ReportsHandler) HoursPDF(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	f, ok := hoursFilter(c)
	if !ok {
		return
	}
	doc, err := h.svc.HoursDocument(c.Request.Context(), id, f)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := infra.RenderHoursPDF(&buf, *doc); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName()+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// EmailHours godoc
// @Summary Envia o relatório de horas em PDF por e-mail
// @Tags horas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param body body dto.EmailHoursRequest true "Destinatário e filtros"
// @Success 202 {object} dto.JobAcceptedResponse
// @Failure 409 {object} apierror.Unavailable
// @Failure 503 {object} apierror.APIError
// @Router /v1/datasets/{id}/hours/email [post]
func (h *ReportsHandler) EmailHours(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var req dto.EmailHoursRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EmailHours(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{Status: "queued", To: req.To})
}
