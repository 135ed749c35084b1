package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"frota/internal/apierror"
	"frota/internal/ingest"
	"frota/internal/middleware"
	"frota/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DatasetsHandler struct {
	svc           service.DatasetService
	maxUploadSize int64
}

func NewDatasetsHandler(svc service.DatasetService, maxUploadMB int) *DatasetsHandler {
	return &DatasetsHandler{svc: svc, maxUploadSize: int64(maxUploadMB) << 20}
}

// Import godoc
// @Summary Importa os cinco CSVs da frota como um novo dataset
// @Description Campos multipart: vehicles, vehicle_uses, maintenances, users, point_records (arquivos) e nome (opcional).
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} apierror.APIError
// @Failure 413 {object} apierror.APIError
// @Router /v1/datasets [post]
func (h *DatasetsHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Arquivos excedem o tamanho máximo permitido"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New("Envie os arquivos como multipart/form-data"))
		return
	}

	var opened []io.Closer
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	open := func(name string) (io.Reader, error) {
		headers := form.File[name]
		if len(headers) == 0 {
			return nil, nil
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, err
		}
		opened = append(opened, f)
		return f, nil
	}

	var files ingest.Files
	for _, slot := range []struct {
		name string
		dst  *io.Reader
	}{
		{ingest.FileVehicles, &files.Vehicles},
		{ingest.FileVehicleUses, &files.VehicleUses},
		{ingest.FileMaintenances, &files.Maintenances},
		{ingest.FileUsers, &files.Users},
		{ingest.FilePointRecords, &files.PointRecords},
	} {
		r, err := open(slot.name)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Não foi possível ler o arquivo "+slot.name))
			return
		}
		if r != nil {
			*slot.dst = r
		}
	}

	resp, err := h.svc.Import(c.Request.Context(), formValue(form, "nome"), files, operadorID(c))
	if err != nil {
		var missing *ingest.MissingFilesError
		switch {
		case errors.As(err, &missing):
			c.JSON(http.StatusBadRequest, apierror.New("Arquivos faltantes: "+strings.Join(missing.Names, ", ")))
		case errors.Is(err, service.ErrInvalidCSV):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ImportSample godoc
// @Summary Carrega o dataset de exemplo
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.ImportResponse
// @Router /v1/datasets/sample [post]
func (h *DatasetsHandler) ImportSample(c *gin.Context) {
	resp, err := h.svc.ImportSample(c.Request.Context(), operadorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista os datasets importados, mais recentes primeiro
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.DatasetResponse
// @Router /v1/datasets [get]
func (h *DatasetsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Remove um dataset e todas as suas linhas
// @Tags datasets
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/datasets/{id} [delete]
func (h *DatasetsHandler) Delete(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func operadorID(c *gin.Context) *uuid.UUID {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return nil
	}
	return claims.OperadorID()
}
